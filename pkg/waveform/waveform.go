// Package waveform renders analysis result series as line charts.
package waveform

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type Options struct {
	Title   string
	X       string   // x series key, TIME when empty
	Signals []string // y series keys, every V(...) series when empty
	LogX    bool
	Width   vg.Length
	Height  vg.Length
}

func (o *Options) defaults(results map[string][]float64) {
	if o.X == "" {
		o.X = "TIME"
	}
	if len(o.Signals) == 0 {
		for name := range results {
			if strings.HasPrefix(name, "V(") {
				o.Signals = append(o.Signals, name)
			}
		}
		slices.Sort(o.Signals)
	}
	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 4 * vg.Inch
	}
}

// New builds a plot of opts.Signals against opts.X. Non-finite samples, and
// non-positive x values on a log axis, are skipped.
func New(results map[string][]float64, opts Options) (*plot.Plot, error) {
	opts.defaults(results)

	xs, ok := results[opts.X]
	if !ok {
		return nil, fmt.Errorf("no %s series in results", opts.X)
	}
	if len(opts.Signals) == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = axisLabel(opts.X)
	p.Legend.Top = true
	if opts.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{}
	}
	p.Add(plotter.NewGrid())

	for i, name := range opts.Signals {
		ys, ok := results[name]
		if !ok {
			return nil, fmt.Errorf("no %s series in results", name)
		}
		pts := points(xs, ys, opts.LogX)
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return p, nil
}

// Save writes the plot to path. The image format follows the file
// extension (png, svg, pdf, ...).
func Save(results map[string][]float64, path string, opts Options) error {
	p, err := New(results, opts)
	if err != nil {
		return err
	}
	opts.defaults(results)
	return p.Save(opts.Width, opts.Height, path)
}

// Write renders the plot in the given format to w.
func Write(w io.Writer, results map[string][]float64, format string, opts Options) error {
	p, err := New(results, opts)
	if err != nil {
		return err
	}
	opts.defaults(results)

	wt, err := p.WriterTo(opts.Width, opts.Height, strings.TrimPrefix(format, "."))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Format returns the image format implied by path.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func points(xs, ys []float64, logX bool) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, 0, n)
	for i := range n {
		x, y := xs[i], ys[i]
		if !finite(x) || !finite(y) || (logX && x <= 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func axisLabel(key string) string {
	switch key {
	case "TIME":
		return "Time (s)"
	case "FREQ":
		return "Frequency (Hz)"
	}
	return key
}
