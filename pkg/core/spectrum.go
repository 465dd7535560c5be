// Package core provides the data model shared by the MALDIView readers,
// the render pipeline and the writers.
package core

import (
	"fmt"
	"math"
	"strings"
)

// Sample represents a single m/z, intensity pair as read from one line of
// an input file.
type Sample struct {
	MZ        float64
	Intensity float64
}

// Dataset is the ordered list of samples loaded from one source. Sample
// order is the line order of the source file.
type Dataset struct {
	Name    string // Label shown on the plot (file base name or MSP entry name)
	Source  string // Path the samples were read from
	Samples []Sample
}

// Series is an aggregated spectrum: MZ is strictly ascending and
// Intensity[i] is the summed intensity at MZ[i].
type Series struct {
	Name      string
	MZ        []float64
	Intensity []float64
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	return len(s.MZ)
}

// ValidationError represents an error found during dataset validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ValidateSample checks that a single sample holds finite, non-negative values.
func ValidateSample(s Sample) error {
	var errs []string

	if math.IsNaN(s.MZ) || math.IsInf(s.MZ, 0) {
		errs = append(errs, "m/z must be finite")
	} else if s.MZ < 0 {
		errs = append(errs, "m/z must be non-negative")
	}
	if math.IsNaN(s.Intensity) || math.IsInf(s.Intensity, 0) {
		errs = append(errs, "intensity must be finite")
	} else if s.Intensity < 0 {
		errs = append(errs, "intensity must be non-negative")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Sample",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Validate checks every sample of the dataset.
func (d *Dataset) Validate() error {
	var errs []string

	for i, s := range d.Samples {
		if err := ValidateSample(s); err != nil {
			errs = append(errs, fmt.Sprintf("sample %d: %s", i, err.(*ValidationError).Message))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Dataset " + d.Name,
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}
