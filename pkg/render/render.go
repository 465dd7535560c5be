// Package render turns loaded datasets and the committed parameter set into
// plot descriptors ready for drawing.
package render

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/ChrisMcGann/MALDIView/pkg/core"
	"github.com/ChrisMcGann/MALDIView/pkg/filter"
	"github.com/ChrisMcGann/MALDIView/pkg/params"
)

const (
	XLabel = "m/z"
	YLabel = "Intensity"
)

// EmptyYMax is the y-axis upper bound used when a plot has no points inside
// the m/z window or none above zero.
const EmptyYMax = 1.0

// Range is a closed axis interval.
type Range struct {
	Min float64
	Max float64
}

// Plot describes one subplot of a render pass. It is never mutated after
// Process returns it.
type Plot struct {
	Index  int // Stacking position, top to bottom
	Name   string
	X      []float64
	Y      []float64
	XRange Range
	YRange Range
	XLabel string
	YLabel string
	Empty  bool // No points inside the m/z window
}

// Pass is the full result of one render: one plot per dataset, in input
// order, together with the parameter values that produced it.
type Pass struct {
	ID     uuid.UUID
	Params params.Snapshot
	Plots  []Plot
	At     time.Time
}

// Process applies the parameter values to one aggregated series.
//
// Points with LowerLimit <= m/z <= UpperLimit are kept and, when UseFilter
// is set, their intensities are smoothed with a Gaussian of FilterSigma
// samples. The x-axis is exactly [LowerLimit, UpperLimit]; the y-axis is
// [0, max(Y)], falling back to [0, EmptyYMax] when there is nothing to
// show. Process has no side effects.
func Process(s core.Series, p params.Snapshot, index int) Plot {
	x, y := filter.SelectRange(s, p.LowerLimit, p.UpperLimit)

	if p.UseFilter {
		y = filter.Gaussian(y, float64(p.FilterSigma))
	}

	plot := Plot{
		Index:  index,
		Name:   s.Name,
		X:      x,
		Y:      y,
		XRange: Range{Min: p.LowerLimit, Max: p.UpperLimit},
		YRange: Range{Min: 0, Max: EmptyYMax},
		XLabel: XLabel,
		YLabel: YLabel,
		Empty:  len(y) == 0,
	}

	if !plot.Empty {
		if top := floats.Max(y); top > 0 {
			plot.YRange.Max = top
		}
	}

	return plot
}

// Render aggregates and processes every dataset against the committed
// values of ps. Plots keep the order of datasets. An empty dataset list
// yields a pass with no plots.
func Render(datasets []*core.Dataset, ps *params.Set) Pass {
	snap := ps.Committed()
	pass := Pass{
		ID:     uuid.New(),
		Params: snap,
		Plots:  make([]Plot, 0, len(datasets)),
		At:     time.Now(),
	}

	if snap.UseFilter && snap.FilterSigma <= 0 {
		log.WithField("sigma", snap.FilterSigma).Warn("Filter sigma is not positive, smoothing skipped")
	}

	for i, d := range datasets {
		series := core.Aggregate(d)
		plot := Process(series, snap, i)
		if plot.Empty {
			log.WithFields(log.Fields{
				"dataset": d.Name,
				"lower":   snap.LowerLimit,
				"upper":   snap.UpperLimit,
			}).Warn("No data inside m/z window")
		}
		pass.Plots = append(pass.Plots, plot)
	}

	log.WithFields(log.Fields{
		"pass":     pass.ID,
		"datasets": len(datasets),
		"params":   snap.String(),
	}).Debug("Render pass complete")

	return pass
}
