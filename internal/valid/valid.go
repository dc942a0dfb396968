// Package valid is for validating user supplied SEED codes.
package valid

import (
	"fmt"
	"regexp"
)

// Auto selects automatic per segment resolution for the location or
// channel code.
const Auto = "AUTO"

var (
	network  = regexp.MustCompile(`^[A-Z0-9]{2}$`)
	station  = regexp.MustCompile(`^[A-Z0-9]{3,5}$`)
	location = regexp.MustCompile(`^[0-9]{2}$`)
)

// channels is the set of channel codes this pipeline can write.
var channels = map[string]bool{
	"BDF": true,
	"HDF": true,
	"DDF": true,
}

type Validator func(string) error

// Network validates a two character SEED network code.
func Network(s string) error {
	if network.MatchString(s) {
		return nil
	}
	return fmt.Errorf("invalid network code: %q", s)
}

// Station validates a three to five character SEED station code.
func Station(s string) error {
	if station.MatchString(s) {
		return nil
	}
	return fmt.Errorf("invalid station code: %q", s)
}

// Location validates a two digit SEED location code or Auto.
func Location(s string) error {
	if s == Auto || location.MatchString(s) {
		return nil
	}
	return fmt.Errorf("invalid location code: %q", s)
}

// Channel validates a supported SEED channel code or Auto.
func Channel(s string) error {
	if s == Auto || channels[s] {
		return nil
	}
	return fmt.Errorf("invalid channel code: %q", s)
}
