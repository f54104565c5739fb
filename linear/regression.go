package linear

import (
	"math"

	"github.com/tpalab/regeval/core/model"
	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression は最小二乗法による線形回帰モデル。
// 特異値分解で最小ノルム解を求めるため、ランク落ちした計画行列
// （定数列や共線な列を含む場合）でも学習できる。
type LinearRegression struct {
	state *model.StateManager

	// ハイパーパラメータ
	fitIntercept bool
	rcond        float64

	// 学習済みパラメータ
	coef      []float64
	intercept float64
	rank      int
	singular  []float64
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		rcond:        -1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる。
// 切片を学習する場合は X と y を中心化してから最小ノルム最小二乗問題を解く。
// 中心化後に全要素がゼロになる列（定数列）の係数は 0 になる。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	const op = "LinearRegression.Fit"

	nSamples, nFeatures, yData, err := checkFitInput(op, X, y)
	if err != nil {
		return err
	}

	lr.state.Reset()

	cols, xMeans := centerColumns(X, lr.fitIntercept)
	yMean := centerTarget(yData, lr.fitIntercept)

	XWork := mat.NewDense(nSamples, nFeatures, nil)
	for j, col := range cols {
		XWork.SetCol(j, col)
	}

	var svd mat.SVD
	if ok := svd.Factorize(XWork, mat.SVDThin); !ok {
		return errors.NewModelError(op, "svd did not converge", errors.ErrSingularMatrix)
	}

	rcond := lr.rcond
	if rcond < 0 {
		rcond = eps * float64(max(nSamples, nFeatures))
	}
	rank := svd.Rank(rcond)

	coef := make([]float64, nFeatures)
	if rank > 0 {
		var w mat.VecDense
		svd.SolveVecTo(&w, mat.NewVecDense(nSamples, yData), rank)
		for j := range coef {
			coef[j] = w.AtVec(j)
		}
	}

	if err := errors.CheckNumericalStability(op, coef, 0); err != nil {
		return err
	}

	lr.coef = coef
	lr.rank = rank
	lr.singular = svd.Values(nil)
	if lr.fitIntercept {
		lr.intercept = interceptFrom(yMean, xMeans, coef)
	} else {
		lr.intercept = 0
	}

	lr.state.SetFitted(nFeatures, nSamples)
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	_, c := X.Dims()
	if err := lr.state.RequireFeatures("LinearRegression.Predict", c); err != nil {
		return nil, err
	}
	return predictLinear(X, lr.coef, lr.intercept), nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if err := lr.state.RequireFitted("LinearRegression", "Score"); err != nil {
		return 0, err
	}
	return scoreR2("LinearRegression.Score", lr, X, y)
}

// Coef は学習された係数のコピーを返す
func (lr *LinearRegression) Coef() []float64 {
	if lr.coef == nil {
		return nil
	}
	out := make([]float64, len(lr.coef))
	copy(out, lr.coef)
	return out
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// Rank は中心化後の計画行列の実効ランクを返す
func (lr *LinearRegression) Rank() int {
	return lr.rank
}

// Singular は中心化後の計画行列の特異値（降順）を返す
func (lr *LinearRegression) Singular() []float64 {
	out := make([]float64, len(lr.singular))
	copy(out, lr.singular)
	return out
}

// IsFitted はモデルが学習済みかどうかを返す
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

var eps = math.Nextafter(1, 2) - 1

var _ model.LinearModel = (*LinearRegression)(nil)
