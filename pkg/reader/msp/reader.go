// Package msp provides streaming readers for MSP spectral libraries, exposing
// each library entry's peak list as a dataset
package msp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/MALDIView/pkg/core"
)

// Reader provides streaming access to MSP format files
type Reader struct {
	scanner *bufio.Scanner
	source  string
	lineNum int
	current *core.Dataset
	err     error
}

// NewReader creates a new MSP reader. source is recorded on every dataset.
func NewReader(r io.Reader, source string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{
		scanner: scanner,
		source:  source,
	}
}

// Next advances to the next entry. Returns false when no more entries or error.
func (r *Reader) Next() bool {
	r.current = nil

	d, err := r.readEntry()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = d
	return true
}

// Dataset returns the current entry's peaks as a dataset
func (r *Reader) Dataset() *core.Dataset {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readEntry reads a single entry from the MSP file. Header lines other than
// Name and Num peaks are ignored.
func (r *Reader) readEntry() (*core.Dataset, error) {
	var d *core.Dataset
	numPeaks := -1

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip empty lines between entries
		if line == "" {
			if d != nil && numPeaks >= 0 {
				return nil, fmt.Errorf("line %d: entry %q ended after %d of %d peaks", r.lineNum, d.Name, len(d.Samples), numPeaks)
			}
			continue
		}

		if numPeaks < 0 {
			switch {
			case strings.HasPrefix(line, "Name:"):
				if d != nil {
					return nil, fmt.Errorf("line %d: entry %q has no peak count", r.lineNum, d.Name)
				}
				d = &core.Dataset{
					Name:   strings.TrimSpace(strings.TrimPrefix(line, "Name:")),
					Source: r.source,
				}
			case strings.HasPrefix(line, "Num peaks:"), strings.HasPrefix(line, "Num Peaks:"):
				if d == nil {
					return nil, fmt.Errorf("line %d: peak count before Name", r.lineNum)
				}
				n, err := strconv.Atoi(strings.TrimSpace(line[len("Num peaks:"):]))
				if err != nil || n < 0 {
					return nil, fmt.Errorf("line %d: invalid num peaks: %q", r.lineNum, line)
				}
				numPeaks = n
				d.Samples = make([]core.Sample, 0, n)
				if n == 0 {
					return d, nil
				}
			}
			continue
		}

		sample, err := parsePeak(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		d.Samples = append(d.Samples, sample)

		if len(d.Samples) >= numPeaks {
			return d, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if d != nil {
		if numPeaks < 0 {
			return nil, fmt.Errorf("entry %q has no peak list", d.Name)
		}
		return nil, fmt.Errorf("entry %q ended after %d of %d peaks", d.Name, len(d.Samples), numPeaks)
	}

	return nil, io.EOF
}

// parsePeak parses a single peak line (format: "mz\tintensity\t\"annotation\"").
// The annotation is ignored.
func parsePeak(line string) (core.Sample, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.Sample{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Sample{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Sample{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	sample := core.Sample{MZ: mz, Intensity: intensity}
	if err := core.ValidateSample(sample); err != nil {
		return core.Sample{}, err
	}
	return sample, nil
}

// ReadFile loads every entry of an MSP file as its own dataset, in file order.
func ReadFile(path string) ([]*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var datasets []*core.Dataset
	reader := NewReader(f, path)
	for reader.Next() {
		datasets = append(datasets, reader.Dataset())
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return datasets, nil
}
