// cube-holdings-loader walks a directory of converted miniSEED files and
// indexes them in the holdings database.  Use it to backfill the index for
// runs converted before the database existed, or after restoring the
// archive from cold storage.
package main

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/GeoNet/kit/cfg"
	_ "github.com/lib/pq"

	"github.com/uafgeotools/cube-convert/internal/holdings"
)

var db *sql.DB

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s converted-dir", os.Args[0])
	}
	dir := os.Args[1]

	p, err := cfg.PostgresEnv()
	if err != nil {
		log.Fatalf("reading DB config from the environment vars: %s", err)
	}

	db, err = sql.Open("postgres", p.Connection())
	if err != nil {
		log.Fatalf("with DB config: %s", err)
	}
	defer db.Close()

	db.SetMaxIdleConns(p.MaxIdle)
	db.SetMaxOpenConns(p.MaxOpen)

	if err := db.Ping(); err != nil {
		log.Fatalf("pinging holdings DB: %s", err)
	}

	paths := make(chan string)

	go func() {
		defer close(paths)

		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// coordinate artifacts and scratch files are not holdings.
			if d.IsDir() || strings.HasSuffix(path, ".json") {
				return nil
			}
			paths <- path
			return nil
		})
		if err != nil {
			log.Fatalf("walking %s: %s", dir, err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()

			procPaths(paths)
		}()
	}
	wg.Wait()
}

func procPaths(paths <-chan string) {
	for path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("ERROR: opening %s: %s", path, err)
			continue
		}

		h, err := holdings.SingleStream(f)
		f.Close()
		if err != nil {
			log.Printf("ERROR: summarising %s: %s", path, err)
			continue
		}

		if err := holdings.Save(db, h, filepath.Base(path)); err != nil {
			log.Printf("ERROR: saving %s: %s", path, err)
		}
	}
}
