// Package report prints evaluation results to a writer.
package report

import (
	"fmt"
	"io"

	"github.com/tpalab/regeval/metrics"
	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Decimals is the number of decimal places metric values are rounded to.
const Decimals = 4

// RegressionMetrics holds the rounded metric values printed by Reporter.
type RegressionMetrics struct {
	ExplainedVariance   float64
	MeanSquaredLogError float64
	R2                  float64
	MAE                 float64
	MedianAbsoluteError float64
	MSE                 float64
	RMSE                float64
}

// ComputeRegressionMetrics evaluates every metric and rounds it. The first
// failing metric aborts the computation.
func ComputeRegressionMetrics(yTrue, yPred *mat.VecDense) (RegressionMetrics, error) {
	var m RegressionMetrics
	steps := []struct {
		name string
		fn   func(yTrue, yPred *mat.VecDense) (float64, error)
		dst  *float64
	}{
		{"explained_variance", metrics.ExplainedVarianceScore, &m.ExplainedVariance},
		{"mean_squared_log_error", metrics.MeanSquaredLogError, &m.MeanSquaredLogError},
		{"r2", metrics.R2Score, &m.R2},
		{"MAE", metrics.MAE, &m.MAE},
		{"median_absolute_error", metrics.MedianAbsoluteError, &m.MedianAbsoluteError},
		{"MSE", metrics.MSE, &m.MSE},
	}
	for _, s := range steps {
		v, err := s.fn(yTrue, yPred)
		if err != nil {
			return RegressionMetrics{}, errors.Wrapf(err, "compute %s", s.name)
		}
		*s.dst = v
	}

	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, errors.Wrap(err, "compute RMSE")
	}
	m.RMSE = rmse

	for _, p := range []*float64{&m.ExplainedVariance, &m.MeanSquaredLogError, &m.R2,
		&m.MAE, &m.MedianAbsoluteError, &m.MSE, &m.RMSE} {
		*p = Round(*p, Decimals)
	}
	return m, nil
}

// Reporter writes results in the evaluator's plain-text layout.
type Reporter struct {
	Out io.Writer
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{Out: w}
}

// RegressionResults computes the regression metrics of yPred against yTrue
// and prints them, one per line. Nothing is printed when a metric fails.
func (r *Reporter) RegressionResults(yTrue, yPred *mat.VecDense) (RegressionMetrics, error) {
	m, err := ComputeRegressionMetrics(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}

	lines := []struct {
		label string
		value float64
	}{
		{"explained_variance:  ", m.ExplainedVariance},
		{"mean_squared_log_error:  ", m.MeanSquaredLogError},
		{"r2:  ", m.R2},
		{"MAE:  ", m.MAE},
		{"median_absolute_error ", m.MedianAbsoluteError},
		{"MSE:  ", m.MSE},
		{"RMSE:  ", m.RMSE},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(r.Out, "%s%s\n", l.label, FormatFloat(l.value)); err != nil {
			return m, errors.Wrap(err, "write report")
		}
	}
	return m, nil
}

// Coefficients prints a coefficient vector as a bracketed list.
func (r *Reporter) Coefficients(coef []float64) error {
	return r.list(coef)
}

// Scores prints cross-validation scores as a bracketed list, in fold order.
func (r *Reporter) Scores(scores []float64) error {
	return r.list(scores)
}

func (r *Reporter) list(values []float64) error {
	if _, err := fmt.Fprintln(r.Out, FormatList(values)); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}
