// Package metrics は回帰モデルの評価指標を提供する。
package metrics

import (
	"math"
	"sort"

	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// checkPair は2つのベクトルが空でなく同じ長さであることを検証する
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// MSEMatrix は行列形式の入力に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, err := ColumnVector("MSEMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := ColumnVector("MSEMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return MSE(yTrueVec, yPredVec)
}

// ColumnVector は n×1 行列を VecDense に変換する。
// 予測器は列ベクトルを mat.Matrix として返すため、評価前にこの変換を通す。
func ColumnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	if v, ok := m.(*mat.VecDense); ok {
		return v, nil
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// MedianAbsoluteError は絶対誤差の中央値を計算する。
// 要素数が偶数の場合は中央2要素の平均を返す。
func MedianAbsoluteError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MedianAbsoluteError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	abs := make([]float64, n)
	for i := range abs {
		abs[i] = math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	sort.Float64s(abs)

	mid := n / 2
	if n%2 == 1 {
		return abs[mid], nil
	}
	return (abs[mid-1] + abs[mid]) / 2, nil
}

// MeanSquaredLogError は平均二乗対数誤差を計算する。
// 負の値を含む場合は log1p が定義できないため ValueError を返す。
func MeanSquaredLogError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MeanSquaredLogError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		if t < 0 || p < 0 {
			return 0, errors.NewValueError("MeanSquaredLogError",
				"mean squared logarithmic error cannot be used when targets contain negative values")
		}
		diff := math.Log1p(t) - math.Log1p(p)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := meanOf(yTrue)

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）: 完全一致なら 1、それ以外は 0
	if tss == 0 {
		return constantTruthScore("r2", rss), nil
	}

	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAPE = (100/n) * Σ|yTrue - yPred|/|yTrue|
	var sum float64
	validCount := 0
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		if yTrueVal != 0 { // ゼロ除算を避ける
			sum += math.Abs(yTrueVal-yPred.AtVec(i)) / math.Abs(yTrueVal)
			validCount++
		}
	}

	if validCount == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}

	return (sum / float64(validCount)) * 100, nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	residual := make([]float64, n)
	truth := make([]float64, n)
	for i := 0; i < n; i++ {
		truth[i] = yTrue.AtVec(i)
		residual[i] = truth[i] - yPred.AtVec(i)
	}

	// 母分散（ddof=0）で計算する
	_, varYTrue := stat.PopMeanVariance(truth, nil)
	_, varDiff := stat.PopMeanVariance(residual, nil)

	if varYTrue == 0 {
		return constantTruthScore("explained_variance", varDiff), nil
	}

	// 説明分散スコア = 1 - Var(yTrue - yPred) / Var(yTrue)
	return 1 - varDiff/varYTrue, nil
}

// constantTruthScore は yTrue の分散がゼロのときのスコアを返す。
// 残差がなければ 1、あれば 0 とし、後者は UndefinedMetricWarning を発行する。
func constantTruthScore(metric string, residual float64) float64 {
	if residual == 0 {
		return 1
	}
	errors.Warn(errors.NewUndefinedMetricWarning(metric, "no variance in y_true", 0))
	return 0
}

func meanOf(v *mat.VecDense) float64 {
	var sum float64
	for i := 0; i < v.Len(); i++ {
		sum += v.AtVec(i)
	}
	return sum / float64(v.Len())
}
