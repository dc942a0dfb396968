package gps_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uafgeotools/cube-convert/internal/gps"
)

const dump = `GPS 2019-07-20 00:00:00 3D-fix sats=9 lat=-19.532011 lon=169.447951 elev=361.0
GPS 2019-07-20 00:10:00 3D-fix sats=8 lat=-19.532015 lon=169.447955 elev=362.0
GPS 2019-07-20 00:20:00 3D-fix sats=7 lat=-19.532013 lon=169.447953 elev=360.0
GPS 2019-07-20 00:30:00 no-fix sats=0 lat=0.0 lon=0.0 elev=0.0
`

func TestParseDump(t *testing.T) {
	points, err := gps.ParseDump(strings.NewReader(dump))
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 4 {
		t.Fatalf("expected 4 fixes got %d", len(points))
	}
	if points[0].Lat != -19.532011 || points[0].Lon != 169.447951 || points[0].Elev != 361.0 {
		t.Errorf("unexpected first fix %+v", points[0])
	}

	if _, err := gps.ParseDump(strings.NewReader("GPS no coords here\n")); err == nil {
		t.Error("expected error for line without coordinate fields")
	}
}

func TestMerge(t *testing.T) {
	points, err := gps.ParseDump(strings.NewReader(dump))
	if err != nil {
		t.Fatal(err)
	}

	coord, err := gps.Merge(points)
	if err != nil {
		t.Fatal(err)
	}

	// medians over the three non zero fixes; elevation keeps the zero fix
	// so the even length median averages the middle pair.
	if coord.Lat != -19.532013 {
		t.Errorf("expected lat -19.532013 got %v", coord.Lat)
	}
	if coord.Lon != 169.447953 {
		t.Errorf("expected lon 169.447953 got %v", coord.Lon)
	}
	if coord.Elev != 360.5 {
		t.Errorf("expected elev 360.5 got %v", coord.Elev)
	}

	if _, err := gps.Merge([]gps.Point{{Lat: 0, Lon: 0, Elev: 0}}); err == nil {
		t.Error("expected error when every fix is a GPS error")
	}
}

func TestSpread(t *testing.T) {
	points, err := gps.ParseDump(strings.NewReader(dump))
	if err != nil {
		t.Fatal(err)
	}

	coord, err := gps.Merge(points)
	if err != nil {
		t.Fatal(err)
	}

	spread := gps.Spread(points, coord)
	if spread <= 0 {
		t.Errorf("expected positive spread, got %f", spread)
	}
	if spread > 10 {
		t.Errorf("fixes are within metres of each other, got spread %f", spread)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AV.GAIA.04.DDF.json")

	if err := gps.WriteJSON(path, gps.Point{Lat: -19.532013, Lon: 169.447953, Elev: 360.5}); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if s := string(b); s != "[-19.532013,169.447953,360.5]\n" {
		t.Errorf("unexpected artifact %q", s)
	}
}
