// Package maldi provides streaming readers for plain-text MALDI peak lists
package maldi

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/MALDIView/pkg/core"
)

// Reader provides streaming access to MALDI text files: one sample per
// line, "m/z intensity" separated by whitespace, no header. Blank lines are
// skipped; any other malformed line stops the reader with an error.
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
	current core.Sample
	err     error
}

// NewReader creates a new MALDI text reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next advances to the next sample. Returns false when no more samples or error.
func (r *Reader) Next() bool {
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseSample(line)
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
			return false
		}
		r.current = sample
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Sample returns the current sample
func (r *Reader) Sample() core.Sample {
	return r.current
}

// Line returns the line number of the current sample
func (r *Reader) Line() int {
	return r.lineNum
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// parseSample parses a single "m/z intensity" line
func parseSample(line string) (core.Sample, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return core.Sample{}, fmt.Errorf("expected 2 fields (m/z intensity), got %d", len(fields))
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Sample{}, fmt.Errorf("invalid m/z value '%s': %w", fields[0], err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Sample{}, fmt.Errorf("invalid intensity value '%s': %w", fields[1], err)
	}

	sample := core.Sample{MZ: mz, Intensity: intensity}
	if err := core.ValidateSample(sample); err != nil {
		return core.Sample{}, err
	}
	return sample, nil
}

// Read reads every sample from r into a dataset with the given name.
func Read(r io.Reader, name string) (*core.Dataset, error) {
	d := &core.Dataset{Name: name}

	reader := NewReader(r)
	for reader.Next() {
		d.Samples = append(d.Samples, reader.Sample())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadFile loads one MALDI text file. The dataset is named after the file's
// base name without extension.
func ReadFile(path string) (*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d, err := Read(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.Source = path
	return d, nil
}
