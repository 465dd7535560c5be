package core

import "sort"

// Aggregate groups the dataset's samples by exact m/z value and sums their
// intensities. The result is sorted by m/z in ascending order.
//
// Two samples are grouped only if their m/z values compare equal; callers
// that need binning must quantize m/z before aggregating. Aggregate never
// modifies the dataset.
func Aggregate(d *Dataset) Series {
	sums := make(map[float64]float64, len(d.Samples))
	for _, s := range d.Samples {
		sums[s.MZ] += s.Intensity
	}

	mz := make([]float64, 0, len(sums))
	for k := range sums {
		mz = append(mz, k)
	}
	sort.Float64s(mz)

	intensity := make([]float64, len(mz))
	for i, k := range mz {
		intensity[i] = sums[k]
	}

	return Series{
		Name:      d.Name,
		MZ:        mz,
		Intensity: intensity,
	}
}
