package gipp

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fake installs a stub tool on the PATH that records its arguments.
func fake(t *testing.T, name string, exitCode int) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub tools need a unix shell")
	}

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > %s\nexit %d\n", argsFile, exitCode)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return argsFile
}

func recorded(t *testing.T, argsFile string) string {
	t.Helper()
	b, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(b))
}

func TestCube2MSEED(t *testing.T) {
	argsFile := fake(t, "cube2mseed", 0)

	if err := (Tools{}).Cube2MSEED("/tmp/work", "190720A.AEX"); err != nil {
		t.Fatal(err)
	}

	expected := "--resample=SINC --output-dir=/tmp/work 190720A.AEX"
	if s := recorded(t, argsFile); s != expected {
		t.Errorf("expected args %q got %q", expected, s)
	}
}

func TestCutVerbose(t *testing.T) {
	argsFile := fake(t, "mseedcut", 0)

	if err := (Tools{Verbose: true}).Cut("/tmp/work", TraceDuration); err != nil {
		t.Fatal(err)
	}

	expected := "--output-dir=/tmp/work --file-length=HOUR /tmp/work --verbose"
	if s := recorded(t, argsFile); s != expected {
		t.Errorf("expected args %q got %q", expected, s)
	}
}

func TestRename(t *testing.T) {
	argsFile := fake(t, "mseedrename", 0)

	err := (Tools{}).Rename("f.pri0", "AV.GAIA.04.DDF.%Y.%j.%H", "*.pri0", "/tmp/out")
	if err != nil {
		t.Fatal(err)
	}

	expected := "--template=AV.GAIA.04.DDF.%Y.%j.%H --force-overwrite --include-pattern=*.pri0 --transfer-mode=MOVE --output-dir=/tmp/out f.pri0"
	if s := recorded(t, argsFile); s != expected {
		t.Errorf("expected args %q got %q", expected, s)
	}
}

func TestGPSDump(t *testing.T) {
	fake(t, "cubeinfo", 0)

	dump, err := (Tools{}).GPSDump("/tmp/work", "/data/190720A.AEX")
	if err != nil {
		t.Fatal(err)
	}
	if dump != "/tmp/work/190720A.AEX.gps.txt" {
		t.Errorf("unexpected dump path %s", dump)
	}
}

func TestToolFailure(t *testing.T) {
	fake(t, "cube2mseed", 1)

	if err := (Tools{}).Cube2MSEED("/tmp/work", "190720A.AEX"); err == nil {
		t.Error("expected error from failing tool")
	}
}
