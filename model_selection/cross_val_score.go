package model_selection

import (
	"context"
	"math"
	"time"

	"github.com/tpalab/regeval/core/model"
	"github.com/tpalab/regeval/pkg/errors"
	"github.com/tpalab/regeval/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// CVResult stores cross-validation results
type CVResult struct {
	Scores   []float64       // held-out score per fold, in fold order
	FitTimes []time.Duration // fit duration per fold
}

// Mean returns mean test score
func (cv *CVResult) Mean() float64 {
	if len(cv.Scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range cv.Scores {
		sum += score
	}
	return sum / float64(len(cv.Scores))
}

// Std returns the population standard deviation of test scores
func (cv *CVResult) Std() float64 {
	if len(cv.Scores) <= 1 {
		return 0.0
	}

	mean := cv.Mean()
	sumSq := 0.0
	for _, score := range cv.Scores {
		diff := score - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(cv.Scores)))
}

// CrossValScore fits a fresh estimator from factory on the training rows of
// every fold and records its Score on the held-out rows. Folds run
// sequentially in order. ctx is checked before each fold.
func CrossValScore(ctx context.Context, factory model.Factory, X, y mat.Matrix, splitter Splitter) (*CVResult, error) {
	nSamples, _ := X.Dims()
	yRows, _ := y.Dims()
	if yRows != nSamples {
		return nil, errors.NewDimensionError("CrossValScore", nSamples, yRows, 0)
	}

	folds, err := splitter.Split(nSamples)
	if err != nil {
		return nil, err
	}

	logger := log.GetLogger().With(
		log.ComponentKey, "model_selection",
		log.OperationKey, log.OperationCrossValidate,
	)

	result := &CVResult{
		Scores:   make([]float64, len(folds)),
		FitTimes: make([]time.Duration, len(folds)),
	}

	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trainX, trainY := extractSubset(X, y, fold.TrainIndices)
		testX, testY := extractSubset(X, y, fold.TestIndices)

		estimator := factory()

		start := time.Now()
		if err := estimator.Fit(trainX, trainY); err != nil {
			return nil, errors.Wrapf(err, "fold %d training failed", i+1)
		}
		result.FitTimes[i] = time.Since(start)

		score, err := estimator.Score(testX, testY)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d scoring failed", i+1)
		}
		result.Scores[i] = score

		logger.Debug("fold scored",
			log.FoldKey, i+1,
			log.SamplesKey, len(fold.TestIndices),
			log.R2ScoreKey, score,
			log.DurationMsKey, result.FitTimes[i].Milliseconds(),
		)
	}

	return result, nil
}

// extractSubset copies the given rows of X and y, preserving index order.
func extractSubset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	rows := len(indices)
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, yCols, nil)

	for i, idx := range indices {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySubset.Set(i, j, y.At(idx, j))
		}
	}

	return xSubset, ySubset
}
