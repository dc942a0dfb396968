package cube_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/uafgeotools/cube-convert/internal/cube"
)

func TestDigitizer(t *testing.T) {
	in := []struct {
		id    string
		batch cube.Batch
		ident string
		err   error
	}{
		{id: "single file", batch: cube.Batch{"190720A.AEX"}, ident: "AEX"},
		{id: "same digitizer", batch: cube.Batch{"190720A.AEX", "190721B.AEX"}, ident: "AEX"},
		{id: "mixed digitizers", batch: cube.Batch{"190720A.AEX", "190720A.AF0"}, err: cube.ErrMixedDigitizers},
		{id: "empty batch", batch: cube.Batch{}, err: cube.ErrNoRawFiles},
		{id: "nil batch", batch: nil, err: cube.ErrNoRawFiles},
	}

	for _, v := range in {
		ident, err := v.batch.Digitizer()
		if v.err != nil {
			if !errors.Is(err, v.err) {
				t.Errorf("%s: expected error %s got %s", v.id, v.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %s", v.id, err)
		}
		if ident != v.ident {
			t.Errorf("%s: expected digitizer %s got %s", v.id, v.ident, ident)
		}
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()

	for _, n := range []string{"190721B.AEX", "190720A.AEX", ".DS_Store"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0700); err != nil {
		t.Fatal(err)
	}

	b, err := cube.Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(b) != 2 {
		t.Fatalf("expected 2 files got %d: %v", len(b), b)
	}
	if filepath.Base(b[0]) != "190720A.AEX" || filepath.Base(b[1]) != "190721B.AEX" {
		t.Errorf("expected sorted batch, got %v", b)
	}

	if _, err := cube.Scan("no-such-dir"); err == nil {
		t.Error("expected error scanning missing directory")
	}
}
