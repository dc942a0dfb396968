// Package gps reduces digitizer GPS fixes to a single deployment
// coordinate.
package gps

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/GeoNet/kit/wgs84"
)

// Point is one GPS fix, elevation in metres.
type Point struct {
	Lat, Lon, Elev float64
}

// ParseDump reads a cubeinfo GPS dump, one fix per line with lat=, lon=
// and elev= fields.
func ParseDump(r io.Reader) ([]Point, error) {
	var points []Point

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var p Point
		var got int

		for _, field := range strings.Fields(line) {
			k, v, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}

			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing GPS field %q: %w", field, err)
			}

			switch k {
			case "lat":
				p.Lat = f
				got++
			case "lon":
				p.Lon = f
				got++
			case "elev":
				p.Elev = f
				got++
			}
		}

		if got != 3 {
			return nil, fmt.Errorf("GPS line without lat/lon/elev fields: %q", line)
		}

		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// Merge reduces fixes to their per axis median.  Zero latitudes and
// longitudes are GPS errors and are dropped from their axis before the
// median; elevation keeps every fix.
func Merge(points []Point) (Point, error) {
	var lat, lon, elev []float64

	for _, p := range points {
		if p.Lat != 0 {
			lat = append(lat, p.Lat)
		}
		if p.Lon != 0 {
			lon = append(lon, p.Lon)
		}
		elev = append(elev, p.Elev)
	}

	if len(lat) == 0 || len(lon) == 0 {
		return Point{}, errors.New("no usable GPS fixes")
	}

	return Point{Lat: median(lat), Lon: median(lon), Elev: median(elev)}, nil
}

// Spread returns the greatest distance in metres from coord to any fix
// with a usable latitude and longitude.
func Spread(points []Point, coord Point) float64 {
	var max float64

	for _, p := range points {
		if p.Lat == 0 || p.Lon == 0 {
			continue
		}
		d, _, err := wgs84.DistanceBearing(coord.Lat, coord.Lon, p.Lat, p.Lon)
		if err != nil {
			continue
		}
		if d > max {
			max = d
		}
	}

	return max
}

// WriteJSON writes the coordinate artifact, a JSON array
// [lat, lon, elev_m], to path.
func WriteJSON(path string, p Point) error {
	b, err := json.Marshal([3]float64{p.Lat, p.Lon, p.Elev})
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)

	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
