// Package plot renders diagnostic charts for fitted models.
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tpalab/regeval/pkg/errors"
)

// Plotter writes PNG charts into Dir.
type Plotter struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// New returns a Plotter writing 6x4 inch images into dir.
func New(dir string) *Plotter {
	return &Plotter{Dir: dir, Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// Fit draws predicted against actual values with the y=x reference line
// and saves it as <name>_fit.png. It returns the written path.
func (p *Plotter) Fit(name string, yTrue, yPred []float64) (string, error) {
	if len(yTrue) == 0 {
		return "", errors.NewValueError("plot.Fit", "no values to plot")
	}
	if len(yTrue) != len(yPred) {
		return "", errors.NewDimensionError("plot.Fit", len(yTrue), len(yPred), 0)
	}

	path := p.path(name, "fit")
	err := errors.SafeExecute("plot.Fit", func() error {
		pl := gonumplot.New()
		pl.Title.Text = name + ": predicted vs actual"
		pl.X.Label.Text = "actual"
		pl.Y.Label.Text = "predicted"

		pts := make(plotter.XYs, len(yTrue))
		lo, hi := yTrue[0], yTrue[0]
		for i := range yTrue {
			pts[i].X = yTrue[i]
			pts[i].Y = yPred[i]
			lo = min(lo, yTrue[i], yPred[i])
			hi = max(hi, yTrue[i], yPred[i])
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Radius = vg.Points(2)

		ref := plotter.NewFunction(func(x float64) float64 { return x })
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		pl.Add(plotter.NewGrid(), sc, ref)
		pl.Legend.Add("y = x", ref)
		if hi == lo {
			hi = lo + 1
		}
		pl.X.Min, pl.X.Max = lo, hi
		pl.Y.Min, pl.Y.Max = lo, hi
		return p.save(pl, path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// CVScores draws one bar per fold and saves it as <name>_cv.png.
func (p *Plotter) CVScores(name string, scores []float64) (string, error) {
	if len(scores) == 0 {
		return "", errors.NewValueError("plot.CVScores", "no scores to plot")
	}

	path := p.path(name, "cv")
	err := errors.SafeExecute("plot.CVScores", func() error {
		pl := gonumplot.New()
		pl.Title.Text = name + ": cross-validation R²"
		pl.Y.Label.Text = "R²"

		bars, err := plotter.NewBarChart(plotter.Values(scores), vg.Points(20))
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)

		labels := make([]string, len(scores))
		for i := range scores {
			labels[i] = fmt.Sprintf("fold %d", i+1)
		}
		pl.Add(plotter.NewGrid(), bars)
		pl.NominalX(labels...)
		return p.save(pl, path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (p *Plotter) path(name, kind string) string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s_%s.png", name, kind))
}

func (p *Plotter) save(pl *gonumplot.Plot, path string) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "create plot dir %s", p.Dir)
	}
	if err := pl.Save(p.Width, p.Height, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}
