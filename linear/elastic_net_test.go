package linear

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestElasticNetSingleFeatureSoftThreshold(t *testing.T) {
	// x·y = 4, ||x||² = 2, l1 penalty = alpha * n = 1.5
	// w = (4 - 1.5) / 2
	X := mat.NewDense(3, 1, []float64{-1, 0, 1})
	y := mat.NewDense(3, 1, []float64{-2, 0, 2})

	en := NewElasticNet(WithAlpha(0.5), WithL1Ratio(1.0))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := en.Coef()[0]; math.Abs(got-1.25) > 1e-12 {
		t.Errorf("Coef()[0] = %v, want 1.25", got)
	}
	if math.Abs(en.Intercept()) > 1e-12 {
		t.Errorf("Intercept() = %v, want 0", en.Intercept())
	}
	if en.NIter() != 2 {
		t.Errorf("NIter() = %d, want 2", en.NIter())
	}
}

func TestElasticNetRidgeComponent(t *testing.T) {
	// l1_ratio = 0: w = x·y / (||x||² + alpha * n) = 4 / (2 + 3)
	X := mat.NewDense(3, 1, []float64{-1, 0, 1})
	y := mat.NewDense(3, 1, []float64{-2, 0, 2})

	en := NewElasticNet(WithAlpha(1.0), WithL1Ratio(0.0))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := en.Coef()[0]; math.Abs(got-0.8) > 1e-10 {
		t.Errorf("Coef()[0] = %v, want 0.8", got)
	}
}

func TestElasticNetStrongPenaltyZeroesEverything(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 2,
		2, 1,
		3, 4,
		4, 3,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	en := NewElasticNet(WithAlpha(100), WithL1Ratio(1.0))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for j, c := range en.Coef() {
		if c != 0 {
			t.Errorf("Coef()[%d] = %v, want 0", j, c)
		}
	}
	if math.Abs(en.Intercept()-2.5) > 1e-12 {
		t.Errorf("Intercept() = %v, want mean(y) = 2.5", en.Intercept())
	}
	if en.NIter() != 1 {
		t.Errorf("NIter() = %d, want 1", en.NIter())
	}
}

func TestElasticNetSmallAlphaApproachesOLS(t *testing.T) {
	X, y := createBenchmarkData(200, 3)

	ols := NewLinearRegression()
	if err := ols.Fit(X, y); err != nil {
		t.Fatalf("OLS Fit() error = %v", err)
	}
	en := NewElasticNet(WithAlpha(1e-6), WithL1Ratio(1.0), WithTol(1e-10), WithMaxIter(10000))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("ElasticNet Fit() error = %v", err)
	}

	olsCoef, enCoef := ols.Coef(), en.Coef()
	for j := range olsCoef {
		if math.Abs(olsCoef[j]-enCoef[j]) > 1e-3 {
			t.Errorf("coef[%d]: ElasticNet = %v, OLS = %v", j, enCoef[j], olsCoef[j])
		}
	}
}

func TestElasticNetSparserThanOLS(t *testing.T) {
	rng := rand.New(rand.NewPCG(12345, 12345))
	const n, p = 100, 8

	// 2 informative features, 4 pure noise features, a correlated copy and a constant column
	X := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j := 1; j < 7; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		X.Set(i, 7, X.At(i, 1)+0.01*rng.NormFloat64())
		y.Set(i, 0, 3*X.At(i, 1)-2*X.At(i, 2)+0.5*rng.NormFloat64())
	}

	ols := NewLinearRegression()
	if err := ols.Fit(X, y); err != nil {
		t.Fatalf("OLS Fit() error = %v", err)
	}
	en := NewElasticNet(WithAlpha(1.0), WithL1Ratio(1.0))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("ElasticNet Fit() error = %v", err)
	}

	countZeros := func(coef []float64) int {
		zeros := 0
		for _, c := range coef {
			if c == 0 {
				zeros++
			}
		}
		return zeros
	}

	olsZeros, enZeros := countZeros(ols.Coef()), countZeros(en.Coef())
	if enZeros < olsZeros {
		t.Errorf("ElasticNet zeros = %d, OLS zeros = %d", enZeros, olsZeros)
	}
	if enZeros < 4 {
		t.Errorf("ElasticNet zeros = %d, want at least 4 (coef %v)", enZeros, en.Coef())
	}
	if en.Coef()[0] != 0 {
		t.Errorf("constant column coef = %v, want 0", en.Coef()[0])
	}
}

func TestElasticNetConvergenceWarning(t *testing.T) {
	var warnings []error
	setWarningHandlerForTest(t, func(w error) { warnings = append(warnings, w) })

	X := mat.NewDense(6, 2, nil)
	y := mat.NewDense(6, 1, nil)
	for i := 0; i < 6; i++ {
		x := float64(i)
		X.Set(i, 0, x)
		X.Set(i, 1, x+float64(i%3)*0.1)
		y.Set(i, 0, 2*x+float64(i%2))
	}

	en := NewElasticNet(WithAlpha(1e-3), WithL1Ratio(1.0), WithMaxIter(1), WithTol(1e-12))
	if err := en.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	var cw *errors.ConvergenceWarning
	if !errors.As(warnings[0], &cw) {
		t.Fatalf("expected ConvergenceWarning, got %T", warnings[0])
	}
	if cw.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", cw.Iterations)
	}
	if en.NIter() != 1 {
		t.Errorf("NIter() = %d, want 1", en.NIter())
	}
	if !en.IsFitted() {
		t.Error("model should keep the last iterate and be fitted")
	}
}

func TestElasticNetValidation(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	tests := []struct {
		name  string
		opts  []ElasticNetOption
		param string
	}{
		{"negative alpha", []ElasticNetOption{WithAlpha(-1)}, "alpha"},
		{"l1 ratio above one", []ElasticNetOption{WithL1Ratio(1.5)}, "l1_ratio"},
		{"l1 ratio below zero", []ElasticNetOption{WithL1Ratio(-0.1)}, "l1_ratio"},
		{"zero max iter", []ElasticNetOption{WithMaxIter(0)}, "max_iter"},
		{"negative tol", []ElasticNetOption{WithTol(-1)}, "tol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewElasticNet(tt.opts...).Fit(X, y)
			var valErr *errors.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.ParamName != tt.param {
				t.Errorf("ParamName = %q, want %q", valErr.ParamName, tt.param)
			}
		})
	}
}

func TestElasticNetNotFitted(t *testing.T) {
	en := NewElasticNet()
	_, err := en.Predict(mat.NewDense(1, 1, []float64{1}))
	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if notFitted.ModelName != "ElasticNet" {
		t.Errorf("ModelName = %q, want ElasticNet", notFitted.ModelName)
	}
}

// setWarningHandlerForTest installs handler for the duration of the test.
func setWarningHandlerForTest(t *testing.T, handler func(error)) {
	t.Helper()
	errors.SetZerologWarnFunc(nil)
	errors.SetWarningHandler(handler)
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })
}
