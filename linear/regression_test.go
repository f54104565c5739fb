package linear

import (
	"math"
	"testing"

	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestLinearRegressionFit(t *testing.T) {
	tests := []struct {
		name          string
		X             *mat.Dense
		y             *mat.Dense
		wantCoef      []float64
		wantIntercept float64
		tolerance     float64
	}{
		{
			name:          "single feature y = 2x + 1",
			X:             mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			y:             mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
			wantCoef:      []float64{2},
			wantIntercept: 1,
			tolerance:     1e-10,
		},
		{
			name: "two features y = 1 + 2a + 3b",
			X: mat.NewDense(5, 2, []float64{
				1, 1,
				2, 0,
				3, 2,
				0, 4,
				5, 1,
			}),
			y:             mat.NewDense(5, 1, []float64{6, 5, 13, 13, 14}),
			wantCoef:      []float64{2, 3},
			wantIntercept: 1,
			tolerance:     1e-9,
		},
		{
			name: "constant column gets zero coefficient",
			X: mat.NewDense(4, 2, []float64{
				1, 1,
				1, 2,
				1, 3,
				1, 4,
			}),
			y:             mat.NewDense(4, 1, []float64{3, 5, 7, 9}),
			wantCoef:      []float64{0, 2},
			wantIntercept: 1,
			tolerance:     1e-10,
		},
		{
			name: "duplicated column splits the weight (minimum norm)",
			X: mat.NewDense(3, 2, []float64{
				1, 1,
				2, 2,
				3, 3,
			}),
			y:             mat.NewDense(3, 1, []float64{2, 4, 6}),
			wantCoef:      []float64{1, 1},
			wantIntercept: 0,
			tolerance:     1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLinearRegression()
			if err := lr.Fit(tt.X, tt.y); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}

			coef := lr.Coef()
			if len(coef) != len(tt.wantCoef) {
				t.Fatalf("len(Coef()) = %d, want %d", len(coef), len(tt.wantCoef))
			}
			for j, want := range tt.wantCoef {
				if math.Abs(coef[j]-want) > tt.tolerance {
					t.Errorf("Coef()[%d] = %v, want %v", j, coef[j], want)
				}
			}
			if math.Abs(lr.Intercept()-tt.wantIntercept) > tt.tolerance {
				t.Errorf("Intercept() = %v, want %v", lr.Intercept(), tt.wantIntercept)
			}

			score, err := lr.Score(tt.X, tt.y)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if math.Abs(score-1) > 1e-9 {
				t.Errorf("Score() = %v, want 1", score)
			}
		})
	}
}

func TestLinearRegressionRank(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 1, 2,
		1, 2, 4,
		1, 3, 6,
		1, 4, 9,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if lr.Rank() != 2 {
		t.Errorf("Rank() = %d, want 2", lr.Rank())
	}
	if got := len(lr.Singular()); got != 3 {
		t.Errorf("len(Singular()) = %d, want 3", got)
	}
}

func TestLinearRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	lr := NewLinearRegression(WithFitIntercept(false))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if math.Abs(lr.Coef()[0]-2) > 1e-10 {
		t.Errorf("Coef()[0] = %v, want 2", lr.Coef()[0])
	}
	if lr.Intercept() != 0 {
		t.Errorf("Intercept() = %v, want 0", lr.Intercept())
	}
}

func TestLinearRegressionErrors(t *testing.T) {
	t.Run("predict before fit", func(t *testing.T) {
		lr := NewLinearRegression()
		_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
		var notFitted *errors.NotFittedError
		if !errors.As(err, &notFitted) {
			t.Fatalf("expected NotFittedError, got %v", err)
		}
	})

	t.Run("score before fit", func(t *testing.T) {
		lr := NewLinearRegression()
		_, err := lr.Score(mat.NewDense(1, 1, []float64{1}), mat.NewDense(1, 1, []float64{1}))
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("row mismatch", func(t *testing.T) {
		lr := NewLinearRegression()
		err := lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected DimensionError, got %v", err)
		}
	})

	t.Run("empty data", func(t *testing.T) {
		lr := NewLinearRegression()
		err := lr.Fit(&mat.Dense{}, &mat.Dense{})
		if !errors.Is(err, errors.ErrEmptyData) {
			t.Fatalf("expected ErrEmptyData, got %v", err)
		}
	})

	t.Run("feature mismatch on predict", func(t *testing.T) {
		lr := NewLinearRegression()
		if err := lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{1, 2, 4})); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		_, err := lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected DimensionError, got %v", err)
		}
		if dimErr.Axis != 1 {
			t.Errorf("Axis = %d, want 1", dimErr.Axis)
		}
	})

	t.Run("score with constant target", func(t *testing.T) {
		lr := NewLinearRegression()
		X := mat.NewDense(3, 1, []float64{1, 2, 3})
		y := mat.NewDense(3, 1, []float64{5, 5, 5})
		if err := lr.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		score, err := lr.Score(X, y)
		if err != nil {
			t.Fatalf("Score() error = %v", err)
		}
		if score != 1 {
			t.Errorf("Score() = %v, want 1 for an exact fit of a constant target", score)
		}
	})
}

func TestLinearRegressionRefitStartsFresh(t *testing.T) {
	lr := NewLinearRegression()
	if err := lr.Fit(mat.NewDense(3, 2, []float64{1, 0, 2, 1, 3, 0}), mat.NewDense(3, 1, []float64{1, 2, 3})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(3, 1, []float64{2, 4, 6})); err != nil {
		t.Fatalf("second Fit() error = %v", err)
	}
	if len(lr.Coef()) != 1 {
		t.Fatalf("len(Coef()) = %d, want 1", len(lr.Coef()))
	}
	if _, err := lr.Predict(mat.NewDense(1, 1, []float64{4})); err != nil {
		t.Errorf("Predict() error = %v", err)
	}
}
