// Package evaluate runs the fit, report and cross-validate sequence for a
// list of regression models.
package evaluate

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tpalab/regeval/config"
	"github.com/tpalab/regeval/core/model"
	"github.com/tpalab/regeval/linear"
	"github.com/tpalab/regeval/metrics"
	"github.com/tpalab/regeval/model_selection"
	"github.com/tpalab/regeval/pkg/errors"
	"github.com/tpalab/regeval/pkg/log"
	"github.com/tpalab/regeval/plot"
	"github.com/tpalab/regeval/report"
)

// Spec names a model and how to build a fresh, unfitted instance of it.
type Spec struct {
	Name      string
	New       model.Factory
	PrintCoef bool // print the full-data coefficients after the metrics
}

// Result holds what Run computed for one model.
type Result struct {
	Name    string
	Metrics report.RegressionMetrics
	Coef    []float64
	CV      *model_selection.CVResult
	Plots   []string
}

// DefaultSpecs returns OLS followed by ElasticNet configured from cfg.
func DefaultSpecs(cfg config.ElasticNetConfig) []Spec {
	return []Spec{
		{
			Name: "LinearRegression",
			New: func() model.Regressor {
				return linear.NewLinearRegression()
			},
		},
		{
			Name: "ElasticNet",
			New: func() model.Regressor {
				return linear.NewElasticNet(
					linear.WithAlpha(cfg.Alpha),
					linear.WithL1Ratio(cfg.L1Ratio),
					linear.WithMaxIter(cfg.MaxIter),
					linear.WithTol(cfg.Tol),
				)
			},
			PrintCoef: true,
		},
	}
}

// Run evaluates every model in order. For each one it fits on all rows,
// prints in-sample metrics, optionally prints the coefficients, then prints
// the k-fold cross-validation R² scores. The first failure stops the run.
func Run(ctx context.Context, cfg *config.Config, X *mat.Dense, y *mat.VecDense, features []string, models []Spec, rep *report.Reporter) ([]Result, error) {
	nSamples, nFeatures := X.Dims()
	if y.Len() != nSamples {
		return nil, errors.NewDimensionError("evaluate.Run", nSamples, y.Len(), 0)
	}
	if features != nil && len(features) != nFeatures {
		return nil, errors.NewDimensionError("evaluate.Run", nFeatures, len(features), 1)
	}

	var plotter *plot.Plotter
	if cfg.Plot.Dir != "" {
		plotter = plot.New(cfg.Plot.Dir)
	}

	logger := log.GetLogger().With(log.ComponentKey, "evaluate")
	results := make([]Result, 0, len(models))
	for _, spec := range models {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := evaluateOne(ctx, cfg, X, y, features, spec, rep, plotter, logger)
		if err != nil {
			return results, errors.Wrapf(err, "evaluate %s", spec.Name)
		}
		results = append(results, res)
	}
	return results, nil
}

func evaluateOne(ctx context.Context, cfg *config.Config, X *mat.Dense, y *mat.VecDense, features []string, spec Spec, rep *report.Reporter, plotter *plot.Plotter, logger log.Logger) (Result, error) {
	res := Result{Name: spec.Name}
	nSamples, nFeatures := X.Dims()
	logger = logger.With(log.ModelNameKey, spec.Name)

	start := time.Now()
	est := spec.New()
	if err := est.Fit(X, y); err != nil {
		return res, errors.Wrap(err, "fit")
	}
	fitTime := time.Since(start)

	pred, err := est.Predict(X)
	if err != nil {
		return res, errors.Wrap(err, "predict")
	}
	yPred, err := metrics.ColumnVector("evaluate.Run", pred)
	if err != nil {
		return res, err
	}

	res.Metrics, err = rep.RegressionResults(y, yPred)
	if err != nil {
		return res, errors.Wrap(err, "report metrics")
	}
	logger.Info("model fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.DurationMsKey, fitTime.Milliseconds(),
		log.R2ScoreKey, res.Metrics.R2,
	)

	if spec.PrintCoef {
		lm, ok := est.(model.LinearModel)
		if !ok {
			return res, errors.NewValueError("evaluate.Run", spec.Name+" does not expose coefficients")
		}
		res.Coef = lm.Coef()
		if err := rep.Coefficients(res.Coef); err != nil {
			return res, err
		}
		logCoefficients(logger, features, res.Coef)
	}

	splitter := model_selection.NewKFold(cfg.CV.Splits, cfg.CV.Shuffle, cfg.CV.Seed)
	res.CV, err = model_selection.CrossValScore(ctx, spec.New, X, y, splitter)
	if err != nil {
		return res, errors.Wrap(err, "cross-validate")
	}
	if err := rep.Scores(res.CV.Scores); err != nil {
		return res, err
	}
	logger.Info("cross-validation finished",
		log.OperationKey, log.OperationCrossValidate,
		log.PhaseKey, log.PhaseValidation,
		log.SplitsKey, cfg.CV.Splits,
		log.RandomSeedKey, cfg.CV.Seed,
		"cv.mean", res.CV.Mean(),
		"cv.std", res.CV.Std(),
	)

	if plotter != nil {
		fitPath, err := plotter.Fit(spec.Name, values(y), values(yPred))
		if err != nil {
			return res, err
		}
		cvPath, err := plotter.CVScores(spec.Name, res.CV.Scores)
		if err != nil {
			return res, err
		}
		res.Plots = []string{fitPath, cvPath}
		logger.Debug("plots written", "plot.files", res.Plots)
	}
	return res, nil
}

func logCoefficients(logger log.Logger, features []string, coef []float64) {
	if features == nil {
		return
	}
	zeros := 0
	for i, c := range coef {
		if c == 0 {
			zeros++
			continue
		}
		logger.Debug("coefficient", "feature", features[i], "value", c)
	}
	logger.Info("coefficients", "coef.zero", zeros, "coef.total", len(coef))
}

func values(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
