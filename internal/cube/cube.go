// Package cube is for working with batches of raw DATA-CUBE files.
//
// A DATA-CUBE digitizer writes files with an extension equal to its three
// character id, e.g. 190720A.AEX was written by digitizer AEX.  One
// conversion run must contain files from exactly one digitizer.
package cube

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Bitweight converts DATA-CUBE integer counts to volts [V/count].  Constant
// for all DATA-CUBE models.
const Bitweight = 2.44140625e-7

var (
	ErrNoRawFiles      = errors.New("no raw files found")
	ErrMixedDigitizers = errors.New("files from multiple digitizers found")
)

// Batch is an ordered set of raw file paths from a directory scan.
type Batch []string

// Scan lists the files in dirs, sorted by name.  Subdirectories and hidden
// files are ignored.
func Scan(dirs ...string) (Batch, error) {
	var b Batch

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading input dir: %w", err)
		}

		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			b = append(b, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(b)

	return b, nil
}

// Digitizer returns the single digitizer id that wrote the batch.  It is an
// error for the batch to be empty or to contain files from more than one
// digitizer.
func (b Batch) Digitizer() (string, error) {
	set := make(map[string]bool)

	for _, f := range b {
		set[extension(f)] = true
	}

	switch len(set) {
	case 0:
		return "", ErrNoRawFiles
	case 1:
		for id := range set {
			return id, nil
		}
	}

	var ids []string
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return "", fmt.Errorf("%w: %s", ErrMixedDigitizers, strings.Join(ids, " "))
}

// extension returns the digitizer id suffix of a raw file name.
func extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
