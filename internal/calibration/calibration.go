// Package calibration holds the digitizer and sensor calibration tables.
//
// The tables are loaded once at startup from three JSON files and are
// immutable afterwards.  Lookups are total: an unknown id falls back to the
// documented default constant and the caller is told a default was used so
// it can warn the operator.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultOffset is the digitizer DC offset used when a digitizer has no
	// table entry [V].
	DefaultOffset = -0.015

	// DefaultSensitivity is the sensor sensitivity used when a sensor has no
	// table entry [V/Pa].
	DefaultSensitivity = 0.009
)

// file names expected in the metadata directory.
const (
	offsetsFile       = "digitizer_offsets.json"
	sensitivitiesFile = "sensor_sensitivities.json"
	pairsFile         = "digitizer_sensor_pairs.json"
)

// Table maps digitizer ids to DC offsets, sensor ids to sensitivities, and
// digitizers to the sensor they were deployed with.
type Table struct {
	offsets       map[string]float64
	sensitivities map[string]float64
	pairs         map[string]string
}

// Load reads the three calibration tables from dir.
func Load(dir string) (*Table, error) {
	var t Table

	if err := readJSON(filepath.Join(dir, offsetsFile), &t.offsets); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, sensitivitiesFile), &t.sensitivities); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, pairsFile), &t.pairs); err != nil {
		return nil, err
	}

	return &t, nil
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading calibration table: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Offset returns the DC offset for digitizer in volts.  usedDefault is true
// when the digitizer has no table entry and DefaultOffset was returned.
func (t *Table) Offset(digitizer string) (offset float64, usedDefault bool) {
	if v, ok := t.offsets[digitizer]; ok {
		return v, false
	}
	return DefaultOffset, true
}

// Sensitivity returns the sensitivity for sensor in V/Pa.  usedDefault is
// true when the sensor has no table entry and DefaultSensitivity was
// returned.
func (t *Table) Sensitivity(sensor string) (sensitivity float64, usedDefault bool) {
	if v, ok := t.sensitivities[sensor]; ok {
		return v, false
	}
	return DefaultSensitivity, true
}

// Sensor returns the sensor paired with digitizer.  ok is false when the
// pairing is unknown; callers that need physical units must treat that as
// fatal, counts passthrough may proceed.
func (t *Table) Sensor(digitizer string) (sensor string, ok bool) {
	sensor, ok = t.pairs[digitizer]
	return sensor, ok
}

// Breakout divides sensitivity by the breakout box correction factor.  A
// zero factor means no breakout box was used and the sensitivity is
// returned unchanged.
func Breakout(sensitivity, factor float64) float64 {
	if factor == 0 {
		return sensitivity
	}
	return sensitivity / factor
}
