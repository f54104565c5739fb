package linear

import (
	"fmt"
	"math"

	"github.com/tpalab/regeval/core/model"
	"github.com/tpalab/regeval/pkg/errors"
	"github.com/tpalab/regeval/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ElasticNet is a linear model trained with combined L1 and L2 penalties.
//
// The objective minimized is
//
//	1/(2n) * ||y - Xw||² + alpha * l1Ratio * ||w||₁ + 0.5 * alpha * (1 - l1Ratio) * ||w||²
//
// by cyclic coordinate descent. With l1Ratio = 1 the model is a Lasso.
type ElasticNet struct {
	state *model.StateManager

	// Hyperparameters
	alpha        float64
	l1Ratio      float64
	maxIter      int
	tol          float64
	fitIntercept bool

	// Learned parameters
	coef      []float64
	intercept float64
	nIter     int
	dualGap   float64
}

// NewElasticNet creates a new ElasticNet with scikit-learn defaults
// (alpha=1, l1_ratio=0.5, max_iter=1000, tol=1e-4).
func NewElasticNet(opts ...ElasticNetOption) *ElasticNet {
	en := &ElasticNet{
		state:        model.NewStateManager(),
		alpha:        1.0,
		l1Ratio:      0.5,
		maxIter:      1000,
		tol:          1e-4,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(en)
	}
	return en
}

func (en *ElasticNet) validate() error {
	if en.alpha < 0 || math.IsNaN(en.alpha) {
		return errors.NewValidationError("alpha", "must be non-negative", en.alpha)
	}
	if en.l1Ratio < 0 || en.l1Ratio > 1 || math.IsNaN(en.l1Ratio) {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", en.l1Ratio)
	}
	if en.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", en.maxIter)
	}
	if en.tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", en.tol)
	}
	return nil
}

// Fit trains the model from scratch on (X, y).
// If the duality gap does not fall below tol·||y||² within maxIter sweeps a
// ConvergenceWarning is emitted and the last iterate is kept.
func (en *ElasticNet) Fit(X, y mat.Matrix) error {
	const op = "ElasticNet.Fit"

	if err := en.validate(); err != nil {
		return err
	}
	nSamples, nFeatures, yData, err := checkFitInput(op, X, y)
	if err != nil {
		return err
	}

	en.state.Reset()

	cols, xMeans := centerColumns(X, en.fitIntercept)
	yMean := centerTarget(yData, en.fitIntercept)

	n := float64(nSamples)
	l1Reg := en.alpha * en.l1Ratio * n
	l2Reg := en.alpha * (1 - en.l1Ratio) * n

	w := make([]float64, nFeatures)
	normSq := make([]float64, nFeatures)
	for j, col := range cols {
		normSq[j] = floats.Dot(col, col)
	}

	// residual R = y - Xw, starting from w = 0
	R := make([]float64, nSamples)
	copy(R, yData)

	tolScaled := en.tol * floats.Dot(yData, yData)
	gap := tolScaled + 1
	converged := false
	iter := 0

	for iter = 0; iter < en.maxIter; iter++ {
		var wMax, dwMax float64
		for j, col := range cols {
			if normSq[j] == 0 {
				continue
			}
			wj := w[j]
			if wj != 0 {
				floats.AddScaled(R, wj, col)
			}

			tmp := floats.Dot(col, R)
			w[j] = math.Copysign(math.Max(math.Abs(tmp)-l1Reg, 0), tmp) / (normSq[j] + l2Reg)

			if w[j] != 0 {
				floats.AddScaled(R, -w[j], col)
			}

			dwMax = math.Max(dwMax, math.Abs(w[j]-wj))
			wMax = math.Max(wMax, math.Abs(w[j]))
		}

		if err := errors.CheckNumericalStability("coordinate_descent", w, iter); err != nil {
			return err
		}

		if wMax == 0 || dwMax/wMax < en.tol || iter == en.maxIter-1 {
			gap = dualityGap(cols, yData, R, w, l1Reg, l2Reg)
			if err := errors.CheckScalar("duality_gap", gap, iter); err != nil {
				return err
			}
			if gap < tolScaled {
				converged = true
				break
			}
		}
	}

	if converged {
		en.nIter = iter + 1
	} else {
		en.nIter = en.maxIter
		errors.Warn(errors.NewConvergenceWarning("ElasticNet", en.maxIter,
			fmt.Sprintf("objective did not converge, duality gap %.3e exceeds tolerance %.3e", gap, tolScaled)))
	}

	en.coef = w
	en.dualGap = gap / n
	if en.fitIntercept {
		en.intercept = interceptFrom(yMean, xMeans, w)
	} else {
		en.intercept = 0
	}

	log.GetLogger().Debug("coordinate descent finished",
		log.ModelNameKey, "ElasticNet",
		log.OperationKey, log.OperationFit,
		log.IterationKey, en.nIter,
		log.RegularizationKey, en.alpha,
		log.L1RatioKey, en.l1Ratio,
		"dual_gap", en.dualGap,
	)

	en.state.SetFitted(nFeatures, nSamples)
	return nil
}

// dualityGap computes the elastic net duality gap at w with residual R = y - Xw.
func dualityGap(cols [][]float64, y, R, w []float64, l1Reg, l2Reg float64) float64 {
	var dualNorm float64
	for j, col := range cols {
		xta := floats.Dot(col, R) - l2Reg*w[j]
		dualNorm = math.Max(dualNorm, math.Abs(xta))
	}

	rNormSq := floats.Dot(R, R)
	wNormSq := floats.Dot(w, w)

	var constant, gap float64
	if dualNorm > l1Reg {
		constant = l1Reg / dualNorm
		gap = 0.5 * (rNormSq + rNormSq*constant*constant)
	} else {
		constant = 1
		gap = rNormSq
	}

	gap += l1Reg*floats.Norm(w, 1) - constant*floats.Dot(R, y) +
		0.5*l2Reg*(1+constant*constant)*wNormSq
	return gap
}

// Predict returns X·coef + intercept as an n×1 matrix.
func (en *ElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := en.state.RequireFitted("ElasticNet", "Predict"); err != nil {
		return nil, err
	}
	_, c := X.Dims()
	if err := en.state.RequireFeatures("ElasticNet.Predict", c); err != nil {
		return nil, err
	}
	return predictLinear(X, en.coef, en.intercept), nil
}

// Score returns the coefficient of determination R² of the prediction.
func (en *ElasticNet) Score(X, y mat.Matrix) (float64, error) {
	if err := en.state.RequireFitted("ElasticNet", "Score"); err != nil {
		return 0, err
	}
	return scoreR2("ElasticNet.Score", en, X, y)
}

// Coef returns a copy of the learned coefficients.
func (en *ElasticNet) Coef() []float64 {
	if en.coef == nil {
		return nil
	}
	out := make([]float64, len(en.coef))
	copy(out, en.coef)
	return out
}

// Intercept returns the learned intercept.
func (en *ElasticNet) Intercept() float64 {
	return en.intercept
}

// NIter returns the number of coordinate descent sweeps run by the last Fit.
func (en *ElasticNet) NIter() int {
	return en.nIter
}

// DualGap returns the final duality gap divided by n_samples.
func (en *ElasticNet) DualGap() float64 {
	return en.dualGap
}

// IsFitted reports whether Fit has completed successfully.
func (en *ElasticNet) IsFitted() bool {
	return en.state.IsFitted()
}

var _ model.LinearModel = (*ElasticNet)(nil)
