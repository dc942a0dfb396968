// Package resolve assigns SEED location and channel codes to segments.
//
// Location and channel are independent axes.  Each is either an explicit
// code supplied by the operator and applied to every segment, or resolved
// automatically per segment: location from the DATA-CUBE channel slot
// suffix of the cut file, channel from the segment sample rate.
package resolve

import (
	"errors"
	"fmt"

	"github.com/uafgeotools/cube-convert/internal/seed"
	"github.com/uafgeotools/cube-convert/internal/valid"
)

var (
	ErrUnknownSuffix  = errors.New("file ending not understood")
	ErrRateOutOfRange = errors.New("sample rate out of range")
)

// locations maps the three DATA-CUBE channel slot suffixes to SEED
// location codes.
var locations = map[string]string{
	".pri0": "01",
	".pri1": "02",
	".pri2": "03",
}

// Policy is the per run identity resolution configuration.  Location and
// Channel are explicit SEED codes, or valid.Auto for per segment
// resolution.
type Policy struct {
	Network, Station string
	Location         string
	Channel          string
}

// Identity resolves the output identity for a segment cut from a file with
// the given source suffix, sampled at sampleRate Hz.
func (p Policy) Identity(suffix string, sampleRate float64) (seed.Identity, error) {
	id := seed.Identity{
		Network:  p.Network,
		Station:  p.Station,
		Location: p.Location,
		Channel:  p.Channel,
	}

	if p.Location == valid.Auto {
		loc, ok := locations[suffix]
		if !ok {
			return seed.Identity{}, fmt.Errorf("%w: %q", ErrUnknownSuffix, suffix)
		}
		id.Location = loc
	}

	if p.Channel == valid.Auto {
		cha, err := Band(sampleRate)
		if err != nil {
			return seed.Identity{}, err
		}
		id.Channel = cha
	}

	return id, nil
}

// Pattern returns the file include pattern handed to the external rename
// tool for a segment with the given source suffix.  With an explicit
// location every file matches; with automatic location only the segment's
// own channel slot does.
func (p Policy) Pattern(suffix string) string {
	if p.Location == valid.Auto {
		return "*" + suffix
	}
	return "*"
}

// Band returns the SEED channel code for an infrasound stream sampled at
// sampleRate Hz.  Bands are half open: [10,80) BDF, [80,250) HDF,
// [250,1000) DDF.
func Band(sampleRate float64) (string, error) {
	switch {
	case sampleRate >= 10 && sampleRate < 80:
		return "BDF", nil
	case sampleRate >= 80 && sampleRate < 250:
		return "HDF", nil
	case sampleRate >= 250 && sampleRate < 1000:
		return "DDF", nil
	default:
		return "", fmt.Errorf("%w: %g Hz", ErrRateOutOfRange, sampleRate)
	}
}
