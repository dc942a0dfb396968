// Package trace holds the in-memory segment model for one conversion run:
// reading cut miniSEED files, reconciling segments that collide on the same
// output hour, applying the counts to physical units calibration, and
// writing the result back to disk.
package trace

import (
	"fmt"
	"time"
)

// reversePolarity lists stations wired with reversed sensor polarity
// (2016 Yasur deployment).  Their calibrated samples are negated.
var reversePolarity = map[string]bool{
	"YIF1": true, "YIF2": true, "YIF3": true,
	"YIF4": true, "YIF5": true, "YIF6": true,
	"YIFA": true, "YIFB": true, "YIFC": true, "YIFD": true,
}

// ReversePolarity reports whether station is deployed with reversed sensor
// polarity.
func ReversePolarity(station string) bool {
	return reversePolarity[station]
}

// Segment is one time bounded recording of one sensor channel.  Samples are
// raw digitizer counts until Calibrate converts them to physical units;
// the conversion is one way and happens at most once.
type Segment struct {
	SampleRate float64
	Start      time.Time
	Suffix     string // DATA-CUBE channel slot suffix of the source file, if any
	Path       string // backing file in the scratch directory

	counts     []int32
	units      []float64
	calibrated bool
}

// NewSegment returns a Segment holding raw digitizer counts.
func NewSegment(start time.Time, sampleRate float64, counts []int32) *Segment {
	return &Segment{
		SampleRate: sampleRate,
		Start:      start,
		counts:     counts,
	}
}

// Counts returns the raw samples.  nil once the segment has been
// calibrated.
func (s *Segment) Counts() []int32 {
	return s.counts
}

// Units returns the calibrated samples in physical units.  nil until the
// segment has been calibrated.
func (s *Segment) Units() []float64 {
	return s.units
}

// Calibrated reports whether the one way counts to physical units
// conversion has been applied.
func (s *Segment) Calibrated() bool {
	return s.calibrated
}

func (s *Segment) NumSamples() int {
	if s.calibrated {
		return len(s.units)
	}
	return len(s.counts)
}

// End returns the time of the last sample.
func (s *Segment) End() time.Time {
	if n := s.NumSamples(); n > 1 && s.SampleRate > 0 {
		return s.Start.Add(time.Duration(float64(n-1) * float64(time.Second) / s.SampleRate))
	}
	return s.Start
}

// Calibrate converts the segment from raw counts to physical units:
// counts * bitweight gives volts, subtracting offset removes the digitizer
// DC bias, dividing by sensitivity gives pascals.  reverse negates every
// sample for stations with reversed sensor polarity.
//
// Calibrating a segment twice would double apply the transform, so a
// second call panics.
func (s *Segment) Calibrate(bitweight, offset, sensitivity float64, reverse bool) {
	if s.calibrated {
		panic(fmt.Sprintf("trace: segment %s already calibrated", s.Path))
	}

	units := make([]float64, len(s.counts))
	for i, c := range s.counts {
		v := float64(c)*bitweight - offset
		p := v / sensitivity
		if reverse {
			p = -p
		}
		units[i] = p
	}

	s.units = units
	s.counts = nil
	s.calibrated = true
}
