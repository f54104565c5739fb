package model_selection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tpalab/regeval/pkg/errors"
)

func TestKFold(t *testing.T) {
	t.Run("Basic KFold split", func(t *testing.T) {
		n := 100
		kf := NewKFold(5, false, 42)
		assert.Equal(t, 5, kf.GetNSplits())

		folds, err := kf.Split(n)
		require.NoError(t, err)
		assert.Equal(t, 5, len(folds))

		for i, fold := range folds {
			assert.Equal(t, 80, len(fold.TrainIndices), "Fold %d train size", i)
			assert.Equal(t, 20, len(fold.TestIndices), "Fold %d test size", i)

			testSet := make(map[int]bool)
			for _, idx := range fold.TestIndices {
				testSet[idx] = true
			}
			for _, idx := range fold.TrainIndices {
				assert.False(t, testSet[idx], "Train index %d in test set", idx)
			}
		}

		// Without shuffle the folds are contiguous blocks
		assert.Equal(t, []int{0, 1, 2, 3, 4}, folds[0].TestIndices[:5])
		assert.Equal(t, 80, folds[4].TestIndices[0])
	})

	t.Run("Uneven fold sizes", func(t *testing.T) {
		kf := NewKFold(5, true, 12345)
		folds, err := kf.Split(23)
		require.NoError(t, err)

		sizes := make([]int, len(folds))
		for i, fold := range folds {
			sizes[i] = len(fold.TestIndices)
			assert.Equal(t, 23, len(fold.TestIndices)+len(fold.TrainIndices))
		}
		assert.Equal(t, []int{5, 5, 5, 4, 4}, sizes)
	})

	t.Run("Default n_splits", func(t *testing.T) {
		assert.Equal(t, 5, NewKFold(1, false, 0).GetNSplits())
	})
}

func TestKFoldPartitionProperty(t *testing.T) {
	for _, n := range []int{5, 6, 37, 100, 1001} {
		kf := NewKFold(5, true, 12345)
		folds, err := kf.Split(n)
		require.NoError(t, err)

		coverage := make([]int, n)
		for _, fold := range folds {
			for _, idx := range fold.TestIndices {
				require.GreaterOrEqual(t, idx, 0)
				require.Less(t, idx, n)
				coverage[idx]++
			}
			assert.True(t, sort.IntsAreSorted(fold.TrainIndices), "train indices should be ascending")
		}

		for i, c := range coverage {
			assert.Equal(t, 1, c, "n=%d: index %d appears %d times across test folds", n, i, c)
		}
	}
}

func TestKFoldShuffleIsDeterministic(t *testing.T) {
	a, err := NewKFold(5, true, 12345).Split(50)
	require.NoError(t, err)
	b, err := NewKFold(5, true, 12345).Split(50)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewKFold(5, true, 54321).Split(50)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	plain, err := NewKFold(5, false, 12345).Split(50)
	require.NoError(t, err)
	assert.NotEqual(t, plain, a)
}

func TestKFoldTooFewSamples(t *testing.T) {
	_, err := NewKFold(5, true, 1).Split(4)
	require.Error(t, err)

	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}
