package diagviz

import (
	graphoptim "github.com/PeterZs/GraphOptim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Sample is one (iteration, value) point of a solver's convergence
// trace — a residual norm, a step size, or any other scalar an estimator
// logs once per iteration.
type Sample struct {
	Iteration int
	Value     float64
}

// Options configures the rendered chart.
type Options struct {
	Title  string
	XLabel string
	YLabel string
}

// ConvergencePlot builds a line chart of samples in iteration order. It
// returns *graphoptim.ErrInvalidInput if samples is empty — there is no
// meaningful chart for an estimator that ran zero iterations.
func ConvergencePlot(samples []Sample, opts Options) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, graphoptim.InvalidInputf("diagviz: no samples to plot")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	points := make(plotter.XYs, len(samples))
	for i, s := range samples {
		points[i].X = float64(s.Iteration)
		points[i].Y = s.Value
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, graphoptim.NumericalFailure("diagviz: build line plotter")
	}
	p.Add(line)
	p.Add(plotter.NewGrid())
	return p, nil
}

// SavePNG renders p to the file at path at the given size in points. The
// image format is chosen from path's extension by plot.Save; a path ending
// in ".png" produces a PNG.
func SavePNG(p *plot.Plot, width, height vg.Length, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return graphoptim.NumericalFailure("diagviz: save plot")
	}
	return nil
}
