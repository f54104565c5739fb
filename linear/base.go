// Package linear provides linear regression estimators.
package linear

import (
	"github.com/tpalab/regeval/core/model"
	"github.com/tpalab/regeval/metrics"
	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// checkFitInput validates X and y for Fit and returns y as a flat slice.
func checkFitInput(op string, X, y mat.Matrix) (nSamples, nFeatures int, yData []float64, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}

	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return 0, 0, nil, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, nil, errors.NewValueError(op, "y must be a column vector")
	}

	yData = make([]float64, nSamples)
	for i := range yData {
		yData[i] = y.At(i, 0)
	}
	return nSamples, nFeatures, yData, nil
}

// centerColumns returns X as column slices, centered when fitIntercept is set,
// together with the column means.
func centerColumns(X mat.Matrix, fitIntercept bool) (cols [][]float64, means []float64) {
	n, p := X.Dims()
	cols = make([][]float64, p)
	means = make([]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		mat.Col(col, j, X)
		if fitIntercept {
			var sum float64
			for _, v := range col {
				sum += v
			}
			mean := sum / float64(n)
			for i := range col {
				col[i] -= mean
			}
			means[j] = mean
		}
		cols[j] = col
	}
	return cols, means
}

// centerTarget centers y in place when fitIntercept is set and returns its mean.
func centerTarget(y []float64, fitIntercept bool) float64 {
	if !fitIntercept {
		return 0
	}
	var sum float64
	for _, v := range y {
		sum += v
	}
	mean := sum / float64(len(y))
	for i := range y {
		y[i] -= mean
	}
	return mean
}

// interceptFrom recovers the intercept of the uncentered problem.
func interceptFrom(yMean float64, xMeans, coef []float64) float64 {
	intercept := yMean
	for j, m := range xMeans {
		intercept -= m * coef[j]
	}
	return intercept
}

// predictLinear computes X·coef + intercept as an n×1 matrix.
func predictLinear(X mat.Matrix, coef []float64, intercept float64) mat.Matrix {
	r, _ := X.Dims()
	w := mat.NewVecDense(len(coef), coef)

	predictions := mat.NewVecDense(r, nil)
	predictions.MulVec(X, w)
	for i := 0; i < r; i++ {
		predictions.SetVec(i, predictions.AtVec(i)+intercept)
	}
	return predictions
}

// scoreR2 computes the coefficient of determination of p on (X, y).
func scoreR2(op string, p model.Predictor, X, y mat.Matrix) (float64, error) {
	yPred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	yTrue, err := metrics.ColumnVector(op, y)
	if err != nil {
		return 0, err
	}
	yHat, err := metrics.ColumnVector(op, yPred)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yTrue, yHat)
}
