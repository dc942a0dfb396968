// cube-convert converts raw DATA-CUBE digitizer files into hour long,
// calibrated, SEED named miniSEED files ready for archive upload.  The
// proprietary format decode, the fixed length cutting and the final rename
// are delegated to the GIPPtools commands cube2mseed, mseedcut and
// mseedrename, which must be on the PATH.
package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/GeoNet/kit/cfg"
	"github.com/GeoNet/kit/slogger"
	_ "github.com/lib/pq"

	"github.com/uafgeotools/cube-convert/internal/calibration"
	"github.com/uafgeotools/cube-convert/internal/cube"
	"github.com/uafgeotools/cube-convert/internal/gipp"
	"github.com/uafgeotools/cube-convert/internal/gps"
	"github.com/uafgeotools/cube-convert/internal/holdings"
	"github.com/uafgeotools/cube-convert/internal/platform/s3"
	"github.com/uafgeotools/cube-convert/internal/resolve"
	"github.com/uafgeotools/cube-convert/internal/seed"
	"github.com/uafgeotools/cube-convert/internal/trace"
	"github.com/uafgeotools/cube-convert/internal/valid"
)

type config struct {
	inputDirs      []string
	outputDir      string
	metadataDir    string
	policy         resolve.Policy
	bobFactor      float64
	preserveCounts bool
	grabGPS        bool
	verbose        bool
}

func main() {
	c := parseFlags()

	if err := run(c); err != nil {
		log.Fatalf("conversion failed: %s", err)
	}

	log.Println("finished conversion process")
}

func parseFlags() config {
	var c config

	flag.StringVar(&c.outputDir, "output-dir", "", "output directory for miniSEED files")
	flag.StringVar(&c.policy.Network, "network", "", "SEED network code")
	flag.StringVar(&c.policy.Station, "station", "", "SEED station code")
	flag.StringVar(&c.policy.Location, "location", "", "SEED location code, or AUTO to resolve per segment")
	flag.StringVar(&c.policy.Channel, "channel", "", "SEED channel code, or AUTO to resolve from the sample rate")
	flag.StringVar(&c.metadataDir, "metadata-dir", "etc", "directory holding the calibration JSON tables")
	flag.Float64Var(&c.bobFactor, "bob-factor", 0, "breakout box sensitivity correction divisor, 0 for none")
	flag.BoolVar(&c.preserveCounts, "preserve-counts", false, "keep raw integer counts, skip calibration")
	flag.BoolVar(&c.grabGPS, "grab-gps", false, "extract coordinates from digitizer GPS")
	flag.BoolVar(&c.verbose, "v", false, "enable verbosity for GIPPtools commands")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input-dir [input-dir ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	c.inputDirs = flag.Args()
	if len(c.inputDirs) == 0 {
		log.Fatal("at least one input directory is required")
	}
	for _, dir := range c.inputDirs {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			log.Fatalf("input directory %q does not exist", dir)
		}
	}
	if c.outputDir == "" {
		log.Fatal("output-dir is required")
	}

	for _, v := range []struct {
		f valid.Validator
		s string
	}{
		{f: valid.Network, s: c.policy.Network},
		{f: valid.Station, s: c.policy.Station},
		{f: valid.Location, s: c.policy.Location},
		{f: valid.Channel, s: c.policy.Channel},
	} {
		if err := v.f(v.s); err != nil {
			log.Fatal(err)
		}
	}

	if c.bobFactor < 0 {
		log.Fatalf("bob-factor must be positive, got %g", c.bobFactor)
	}

	return c
}

func run(c config) error {
	tmpDir := filepath.Join(c.outputDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return err
	}
	// scratch files from a failed run are left for inspection, the
	// directory only goes away if it is empty.
	defer os.Remove(tmpDir)

	tables, err := calibration.Load(c.metadataDir)
	if err != nil {
		return err
	}

	batch, err := cube.Scan(c.inputDirs...)
	if err != nil {
		return err
	}

	digitizer, err := batch.Digitizer()
	if err != nil {
		return err
	}

	sensor, ok := tables.Sensor(digitizer)
	if !ok {
		if !c.preserveCounts {
			return fmt.Errorf("no sensor pairing for digitizer %s", digitizer)
		}
		log.Printf("WARN no sensor pairing for digitizer %s, proceeding with raw counts", digitizer)
	}

	offset, usedDefault := tables.Offset(digitizer)
	if usedDefault {
		log.Printf("WARN no offset for digitizer %s, using default of %g V", digitizer, offset)
	}

	sensitivity, usedDefault := tables.Sensitivity(sensor)
	if usedDefault && ok {
		log.Printf("WARN no sensitivity for sensor %s, using default of %g V/Pa", sensor, sensitivity)
	}
	sensitivity = calibration.Breakout(sensitivity, c.bobFactor)

	log.Printf("network: %s station: %s location: %s channel: %s",
		c.policy.Network, c.policy.Station, c.policy.Location, c.policy.Channel)
	log.Printf("digitizer: %s (offset = %g V) sensor: %s (sensitivity = %g V/Pa)",
		digitizer, offset, sensor, sensitivity)

	tools := gipp.Tools{Verbose: c.verbose}

	log.Printf("running cube2mseed on %d raw file(s)", len(batch))
	progress := slogger.NewSmartLogger(time.Second, "converting ")
	for _, raw := range batch {
		progress.Log("converting " + filepath.Base(raw))
		if err := tools.Cube2MSEED(tmpDir, raw); err != nil {
			return err
		}
	}

	dayFiles, err := listFiles(tmpDir)
	if err != nil {
		return err
	}

	log.Println("running mseedcut on converted miniSEED files")
	if err := tools.Cut(tmpDir, gipp.TraceDuration); err != nil {
		return err
	}

	for _, f := range dayFiles {
		if err := os.Remove(f); err != nil {
			return err
		}
	}

	cutFiles, err := listFiles(tmpDir)
	if err != nil {
		return err
	}

	var segs []*trace.Segment
	for _, f := range cutFiles {
		s, err := trace.ReadFile(f)
		if err != nil {
			return err
		}
		segs = append(segs, s)
	}

	// the reconciler's bucketing and discard policy need ascending start
	// times.
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start.Before(segs[j].Start) })

	segs, stale := trace.Reconcile(segs)
	for _, f := range stale {
		log.Printf("dropping %s: same output hour as a later segment", filepath.Base(f))
		if err := os.Remove(f); err != nil {
			return err
		}
	}

	reverse := trace.ReversePolarity(c.policy.Station)
	if reverse {
		log.Printf("station %s has reversed polarity, negating samples", c.policy.Station)
	}

	log.Printf("adding metadata to %d miniSEED file(s)", len(segs))

	var outputs []string
	metadata := slogger.NewSmartLogger(time.Second, "writing ")
	for _, s := range segs {
		id, err := c.policy.Identity(s.Suffix, s.SampleRate)
		if err != nil {
			return err
		}

		if !c.preserveCounts {
			s.Calibrate(cube.Bitweight, offset, sensitivity, reverse)
		}

		metadata.Log("writing " + filepath.Base(s.Path))
		if err := trace.WriteFile(s.Path, s, id); err != nil {
			return err
		}

		if err := tools.Rename(s.Path, seed.RenameTemplate(id), c.policy.Pattern(s.Suffix), c.outputDir); err != nil {
			return err
		}

		outputs = append(outputs, seed.Name(id, s.Start))
	}

	if c.grabGPS {
		if err := grabGPS(c, tools, batch, tmpDir); err != nil {
			return err
		}
	}

	return index(c, outputs)
}

// grabGPS extracts and reduces the digitizer GPS fixes for every raw file
// and writes the coordinate artifact into the output directory.
func grabGPS(c config, tools gipp.Tools, batch cube.Batch, tmpDir string) error {
	log.Printf("extracting and reducing GPS data for %d raw file(s)", len(batch))

	var points []gps.Point

	for _, raw := range batch {
		dump, err := tools.GPSDump(tmpDir, raw)
		if err != nil {
			return err
		}

		f, err := os.Open(dump)
		if err != nil {
			return err
		}

		p, err := gps.ParseDump(f)
		f.Close()
		if err != nil {
			return err
		}

		if err := os.Remove(dump); err != nil {
			return err
		}

		points = append(points, p...)
	}

	coord, err := gps.Merge(points)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s.%s.%s.%s.json",
		c.policy.Network, c.policy.Station, c.policy.Location, c.policy.Channel)
	if err := gps.WriteJSON(filepath.Join(c.outputDir, name), coord); err != nil {
		return err
	}

	log.Printf("coordinates exported to %s: [%g, %g, %g], max fix spread %.1f m from %d fix(es)",
		name, coord.Lat, coord.Lon, coord.Elev, gps.Spread(points, coord), len(points))

	return nil
}

// index registers the converted files in the holdings database and uploads
// them to the staging bucket.  Both integrations are optional and enabled
// by environment: DB_* for postgres, S3_BUCKET and AWS_REGION for S3.
func index(c config, outputs []string) error {
	bucket := os.Getenv("S3_BUCKET")
	if os.Getenv("DB_HOST") == "" && bucket == "" {
		return nil
	}

	var db *sql.DB

	if os.Getenv("DB_HOST") != "" {
		p, err := cfg.PostgresEnv()
		if err != nil {
			return fmt.Errorf("reading DB config from the environment vars: %w", err)
		}

		db, err = sql.Open("postgres", p.Connection())
		if err != nil {
			return fmt.Errorf("with DB config: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("pinging holdings DB: %w", err)
		}
	}

	var uploader *s3.S3
	if bucket != "" {
		client, err := s3.New(100)
		if err != nil {
			return fmt.Errorf("creating S3 client: %w", err)
		}
		uploader = &client
	}

	for _, name := range outputs {
		b, err := os.ReadFile(filepath.Join(c.outputDir, name))
		if err != nil {
			return err
		}

		if db != nil {
			h, err := holdings.SingleStream(bytes.NewReader(b))
			if err != nil {
				return err
			}
			if err := holdings.Save(db, h, name); err != nil {
				return fmt.Errorf("saving holding for %s: %w", name, err)
			}
		}

		if uploader != nil {
			if err := uploader.Put(bucket, name, b); err != nil {
				return fmt.Errorf("uploading %s: %w", name, err)
			}
		}
	}

	log.Printf("indexed %d output file(s)", len(outputs))

	return nil
}

// listFiles returns the files in dir, sorted by name.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)

	return files, nil
}
