// Package filter provides m/z range selection and intensity smoothing for
// aggregated spectra.
package filter

import "github.com/ChrisMcGann/MALDIView/pkg/core"

// SelectRange returns the points of s with lower <= m/z <= upper, both
// bounds inclusive. The returned slices are fresh copies; s is never
// modified. An inverted range (lower > upper) selects nothing.
func SelectRange(s core.Series, lower, upper float64) (mz, intensity []float64) {
	mz = make([]float64, 0, s.Len())
	intensity = make([]float64, 0, s.Len())

	for i, x := range s.MZ {
		if lower <= x && x <= upper {
			mz = append(mz, x)
			intensity = append(intensity, s.Intensity[i])
		}
	}
	return mz, intensity
}
