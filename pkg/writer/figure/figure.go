// Package figure draws render passes as a vertical stack of line charts and
// writes them as PNG images
package figure

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ChrisMcGann/MALDIView/pkg/render"
)

// ErrNoPlots is returned when a pass has nothing to draw.
var ErrNoPlots = errors.New("figure: pass has no plots")

// Default panel size in pixels, a 12.7 x 2.9 inch figure at 100 dpi.
const (
	DefaultWidth  = 1270
	DefaultHeight = 290
)

// Options controls the size of each stacked panel.
type Options struct {
	Width  int // Panel width in pixels
	Height int // Height of one panel in pixels
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Draw renders every plot of the pass and stacks them top to bottom in plot
// order. A panel that fails to render is replaced by a blank panel so the
// remaining plots stay in position.
func Draw(pass render.Pass, opts Options) (image.Image, error) {
	if len(pass.Plots) == 0 {
		return nil, ErrNoPlots
	}
	opts = opts.withDefaults()

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height*len(pass.Plots)))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, plot := range pass.Plots {
		panel, err := drawPanel(plot, opts)
		if err != nil {
			log.WithFields(log.Fields{
				"plot":  plot.Name,
				"index": plot.Index,
			}).WithError(err).Warn("Chart render failed, leaving panel blank")
			continue
		}
		dst := image.Rect(0, i*opts.Height, opts.Width, (i+1)*opts.Height)
		draw.Draw(out, dst, panel, panel.Bounds().Min, draw.Src)
	}

	return out, nil
}

// Encode draws the pass and writes it to w as PNG.
func Encode(w io.Writer, pass render.Pass, opts Options) error {
	img, err := Draw(pass, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// WriteFile draws the pass into a PNG file at path, replacing any existing
// file.
func WriteFile(path string, pass render.Pass, opts Options) error {
	var buf bytes.Buffer
	if err := Encode(&buf, pass, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write figure: %w", err)
	}
	return nil
}

func drawPanel(plot render.Plot, opts Options) (image.Image, error) {
	ch := chart.Chart{
		Title:      plot.Name,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 24, Bottom: 12}},
		XAxis: chart.XAxis{
			Name:  plot.XLabel,
			Range: axisRange(plot.XRange),
		},
		YAxis: chart.YAxis{
			Name:  plot.YLabel,
			Range: axisRange(plot.YRange),
		},
		Series: []chart.Series{lineSeries(plot)},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}
	return img, nil
}

// lineSeries builds the black spectrum line. go-chart needs at least two
// points, so a single point is repeated and an empty plot gets an invisible
// baseline spanning the x-axis. go-chart treats a zero Color as unset.
func lineSeries(plot render.Plot) chart.ContinuousSeries {
	style := chart.Style{
		StrokeColor: drawing.ColorBlack,
		StrokeWidth: 2,
	}

	switch len(plot.X) {
	case 0:
		r := axisRange(plot.XRange)
		style.StrokeColor = drawing.Color{R: 255, G: 255, B: 255, A: 0}
		return chart.ContinuousSeries{
			Name:    plot.Name,
			XValues: []float64{r.Min, r.Max},
			YValues: []float64{0, 0},
			Style:   style,
		}
	case 1:
		return chart.ContinuousSeries{
			Name:    plot.Name,
			XValues: []float64{plot.X[0], plot.X[0]},
			YValues: []float64{plot.Y[0], plot.Y[0]},
			Style:   style,
		}
	}

	return chart.ContinuousSeries{
		Name:    plot.Name,
		XValues: plot.X,
		YValues: plot.Y,
		Style:   style,
	}
}

// axisRange orders inverted limits and widens a zero-width range so the
// chart library always gets a drawable interval.
func axisRange(r render.Range) *chart.ContinuousRange {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}
