package calibration_test

import (
	"testing"

	"github.com/uafgeotools/cube-convert/internal/calibration"
)

func table(t *testing.T) *calibration.Table {
	tab, err := calibration.Load("testdata")
	if err != nil {
		t.Fatalf("loading tables: %s", err)
	}
	return tab
}

func TestOffset(t *testing.T) {
	tab := table(t)

	in := []struct {
		digitizer   string
		offset      float64
		usedDefault bool
	}{
		{digitizer: "AEX", offset: -0.0148},
		{digitizer: "AF0", offset: -0.0157},
		{digitizer: "ZZZ", offset: calibration.DefaultOffset, usedDefault: true},
		{digitizer: "", offset: calibration.DefaultOffset, usedDefault: true},
	}

	for _, v := range in {
		offset, usedDefault := tab.Offset(v.digitizer)
		if offset != v.offset {
			t.Errorf("%s: expected offset %f got %f", v.digitizer, v.offset, offset)
		}
		if usedDefault != v.usedDefault {
			t.Errorf("%s: expected usedDefault %t got %t", v.digitizer, v.usedDefault, usedDefault)
		}
	}
}

func TestSensitivity(t *testing.T) {
	tab := table(t)

	in := []struct {
		sensor      string
		sensitivity float64
		usedDefault bool
	}{
		{sensor: "0102", sensitivity: 0.00902},
		{sensor: "0118", sensitivity: 0.00885},
		{sensor: "9999", sensitivity: calibration.DefaultSensitivity, usedDefault: true},
	}

	for _, v := range in {
		sensitivity, usedDefault := tab.Sensitivity(v.sensor)
		if sensitivity != v.sensitivity {
			t.Errorf("%s: expected sensitivity %f got %f", v.sensor, v.sensitivity, sensitivity)
		}
		if usedDefault != v.usedDefault {
			t.Errorf("%s: expected usedDefault %t got %t", v.sensor, v.usedDefault, usedDefault)
		}
	}
}

func TestSensor(t *testing.T) {
	tab := table(t)

	if s, ok := tab.Sensor("AEX"); !ok || s != "0102" {
		t.Errorf("expected 0102 true got %s %t", s, ok)
	}
	if s, ok := tab.Sensor("ZZZ"); ok {
		t.Errorf("expected no pairing for ZZZ, got %s", s)
	}
}

func TestBreakout(t *testing.T) {
	if s := calibration.Breakout(0.009, 0); s != 0.009 {
		t.Errorf("zero factor should be identity, got %f", s)
	}
	if s := calibration.Breakout(0.009, 2); s != 0.0045 {
		t.Errorf("expected 0.0045 got %f", s)
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := calibration.Load("no-such-dir"); err == nil {
		t.Error("expected error loading from missing directory")
	}
}
