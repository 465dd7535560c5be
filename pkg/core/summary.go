package core

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Summary holds descriptive statistics for one dataset.
type Summary struct {
	Name           string
	RawSamples     int
	UniqueMZ       int
	MinMZ          float64
	MaxMZ          float64
	TotalIntensity float64
	BasePeakMZ     float64
	BasePeakHeight float64
}

// Summarize aggregates the dataset and reports its size, m/z range, total
// intensity and base peak. An empty dataset yields a zero Summary apart
// from its name.
func Summarize(d *Dataset) Summary {
	s := Aggregate(d)
	sum := Summary{
		Name:       d.Name,
		RawSamples: len(d.Samples),
		UniqueMZ:   s.Len(),
	}
	if s.Len() == 0 {
		return sum
	}

	sum.MinMZ = s.MZ[0]
	sum.MaxMZ = s.MZ[s.Len()-1]
	sum.TotalIntensity = floats.Sum(s.Intensity)

	base := floats.MaxIdx(s.Intensity)
	sum.BasePeakMZ = s.MZ[base]
	sum.BasePeakHeight = s.Intensity[base]

	return sum
}

// String formats the summary as a single human-readable line.
func (s Summary) String() string {
	if s.UniqueMZ == 0 {
		return fmt.Sprintf("%s: %d samples, no data", s.Name, s.RawSamples)
	}
	return fmt.Sprintf("%s: %d samples, %d unique m/z, m/z %.4f-%.4f, total intensity %.4g, base peak %.4f (%.4g)",
		s.Name, s.RawSamples, s.UniqueMZ, s.MinMZ, s.MaxMZ, s.TotalIntensity, s.BasePeakMZ, s.BasePeakHeight)
}
