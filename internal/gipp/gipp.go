// Package gipp shells out to the GIPPtools utilities (cube2mseed, mseedcut,
// mseedrename, cubeinfo) which must be on the PATH.  Invocations are
// synchronous and blocking; a non zero exit propagates as an error and the
// pipeline stops.
package gipp

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// TraceDuration is the fixed length of the cut trace files.  HOUR is the
// archive standard; mseedcut accepts other lengths.
const TraceDuration = "HOUR"

// Tools runs the GIPPtools commands.  Verbose passes --verbose through to
// every invocation.
type Tools struct {
	Verbose bool
}

func (g Tools) run(name string, args ...string) error {
	if g.Verbose {
		args = append(args, "--verbose")
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// Cube2MSEED converts one raw DATA-CUBE file into day long miniSEED files
// in outputDir, resampling onto a regular grid.
func (g Tools) Cube2MSEED(outputDir, rawFile string) error {
	return g.run("cube2mseed", "--resample=SINC", "--output-dir="+outputDir, rawFile)
}

// Cut splits the day long miniSEED files in dir into fixed length traces,
// in place.
func (g Tools) Cut(dir, fileLength string) error {
	return g.run("mseedcut", "--output-dir="+dir, "--file-length="+fileLength, dir)
}

// Rename moves file into outputDir named after template, overwriting any
// previous conversion of the same hour.  pattern restricts which files the
// tool will touch.
func (g Tools) Rename(file, template, pattern, outputDir string) error {
	return g.run("mseedrename", "--template="+template, "--force-overwrite",
		"--include-pattern="+pattern, "--transfer-mode=MOVE",
		"--output-dir="+outputDir, file)
}

// GPSDump extracts the GPS log of one raw DATA-CUBE file into outputDir
// and returns the path of the dump file cubeinfo created.
func (g Tools) GPSDump(outputDir, rawFile string) (string, error) {
	if err := g.run("cubeinfo", "--format=GPS", "--output-dir="+outputDir, rawFile); err != nil {
		return "", err
	}
	return filepath.Join(outputDir, filepath.Base(rawFile)+".gps.txt"), nil
}
