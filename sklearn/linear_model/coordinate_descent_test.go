package linear_model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	glearnerrors "github.com/YuminosukeSato/glearn/pkg/errors"
)

// makeLinearData builds y = Xw + intercept without noise.
func makeLinearData(t *testing.T, w []float64, intercept float64, rows int) (*mat.Dense, *mat.Dense) {
	t.Helper()
	p := len(w)
	X := mat.NewDense(rows, p, nil)
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		target := intercept
		for j := 0; j < p; j++ {
			// 決定的だが列ごとに異なる値を振る
			v := math.Sin(float64(i*(j+2)+1)) + float64(i%5)*0.3
			X.Set(i, j, v)
			target += w[j] * v
		}
		y.Set(i, 0, target)
	}
	return X, y
}

func TestAlphaGridDescending(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.5, -2.0}, 0, 20)
	yv := make([]float64, 20)
	for i := 0; i < 20; i++ {
		yv[i] = y.At(i, 0)
	}

	alphas, err := AlphaGrid(X, yv, 1.0, 1e-3, 10)
	require.NoError(t, err)
	require.Len(t, alphas, 10)
	for i := 1; i < len(alphas); i++ {
		assert.Less(t, alphas[i], alphas[i-1])
	}
	assert.InDelta(t, alphas[0]*1e-3, alphas[len(alphas)-1], alphas[0]*1e-9)
}

func TestAlphaGridRejectsZeroL1Ratio(t *testing.T) {
	X, y := makeLinearData(t, []float64{1}, 0, 5)
	yv := make([]float64, 5)
	for i := range yv {
		yv[i] = y.At(i, 0)
	}
	_, err := AlphaGrid(X, yv, 0, 1e-3, 5)
	assert.Error(t, err)
}

// 単一特徴量のLassoは閉形式解 w = S(x·y/n, α)/(x·x/n) を持つ
func TestLassoSingleFeatureClosedForm(t *testing.T) {
	n := 8
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	X := mat.NewDense(n, 1, xs)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, 2*xs[i]+1)
	}

	alpha := 0.5
	lasso := NewLasso(WithAlpha(alpha), WithMaxIter(5000), WithTol(1e-12))
	require.NoError(t, lasso.Fit(X, y))

	// 中心化したデータで閉形式解を計算する
	xMean, yMean := 0.0, 0.0
	for i := 0; i < n; i++ {
		xMean += xs[i] / float64(n)
		yMean += y.At(i, 0) / float64(n)
	}
	var xy, xx float64
	for i := 0; i < n; i++ {
		xc := xs[i] - xMean
		yc := y.At(i, 0) - yMean
		xy += xc * yc
		xx += xc * xc
	}
	rho := xy / float64(n)
	expected := math.Max(0, rho-alpha) / (xx / float64(n))

	assert.InDelta(t, expected, lasso.Weights()[0], 1e-8)
	assert.InDelta(t, yMean-xMean*expected, lasso.Intercept(), 1e-8)
}

func TestLassoLargeAlphaZeroesAllCoefficients(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.0, -0.5, 2.0}, 0.3, 25)

	lasso := NewLasso(WithAlpha(1e6))
	require.NoError(t, lasso.Fit(X, y))
	for _, w := range lasso.Weights() {
		assert.Zero(t, w)
	}
}

func TestElasticNetRecoversLinearRelation(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0}, 0.5, 40)

	enet := NewElasticNet(WithAlpha(1e-4), WithL1Ratio(0.5), WithMaxIter(10000), WithTol(1e-10))
	require.NoError(t, enet.Fit(X, y))

	w := enet.Weights()
	assert.InDelta(t, 2.0, w[0], 1e-2)
	assert.InDelta(t, -1.0, w[1], 1e-2)

	score, err := enet.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.999)
}

func TestElasticNetPositiveConstraint(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.5, -2.0}, 0, 30)

	enet := NewElasticNet(WithAlpha(0.01), WithPositive(true), WithMaxIter(5000))
	require.NoError(t, enet.Fit(X, y))
	for _, w := range enet.Weights() {
		assert.GreaterOrEqual(t, w, 0.0)
	}
}

func TestElasticNetPredictBeforeFit(t *testing.T) {
	enet := NewElasticNet()
	_, err := enet.Predict(mat.NewDense(2, 2, nil))
	require.Error(t, err)
	var nf *glearnerrors.NotFittedError
	assert.ErrorAs(t, err, &nf)
}

func TestElasticNetWarmStartReusesCoefficients(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.0, 2.0}, 0, 30)

	warm := NewElasticNet(WithAlpha(0.01), WithWarmStart(true), WithMaxIter(5000))
	require.NoError(t, warm.Fit(X, y))
	firstIter := warm.NIter()
	require.NoError(t, warm.Fit(X, y))
	// 収束済みの係数から再開するので反復は初回より増えない
	assert.LessOrEqual(t, warm.NIter(), firstIter)
}

func TestEnetPathShapesAndMonotonicity(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0, 0.5}, 0.2, 30)

	path, err := EnetPath(X, y, WithPathNAlphas(20), WithPathL1Ratio(1.0))
	require.NoError(t, err)

	require.Len(t, path.Alphas, 20)
	rows, cols := path.Coefs.Dims()
	assert.Equal(t, 20, rows)
	assert.Equal(t, 3, cols)
	require.Len(t, path.Intercepts, 20)

	// alphaが大きいほどL1ノルムは小さい（降順のalphaに対して非減少）
	prev := -1.0
	for a := 0; a < rows; a++ {
		l1 := 0.0
		for j := 0; j < cols; j++ {
			l1 += math.Abs(path.Coefs.At(a, j))
		}
		assert.GreaterOrEqual(t, l1+1e-12, prev)
		prev = l1
	}
	// 最大alphaでは全係数が（丸め誤差を除き）ゼロ
	for j := 0; j < cols; j++ {
		assert.InDelta(t, 0, path.Coefs.At(0, j), 1e-10)
	}
}

// 既知のlassoパス: y が第1列そのものである2特徴量の固定問題で、
// LARS-lassoの解と突き合わせる
func TestLassoPathKnownSolution(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 2.3,
		2, 5.4,
		3.1, 4.3,
	})
	y := mat.NewDense(3, 1, []float64{1, 2, 3.1})

	path, err := LassoPath(X, y,
		WithPathAlphas([]float64{5, 1, 0.5}),
		WithPathFitIntercept(false),
		WithPathMaxIter(5000),
		WithPathTol(1e-10),
	)
	require.NoError(t, err)
	require.Equal(t, []float64{5, 1, 0.5}, path.Alphas)

	// KKT条件から求めた各alphaの厳密解
	want := [][]float64{
		{0, 0.2159048},
		{0, 0.4425765},
		{0.4691524, 0.2366888},
	}
	for a, coefs := range want {
		for j, w := range coefs {
			assert.InDelta(t, w, path.Coefs.At(a, j), 1e-2,
				"alpha=%v feature=%d", path.Alphas[a], j)
		}
		assert.InDelta(t, 0, path.Intercepts[a], 1e-12)
	}

	// alpha=5 と 1 では第1特徴量は非活性のまま
	assert.InDelta(t, 0, path.Coefs.At(0, 0), 1e-12)
	assert.InDelta(t, 0, path.Coefs.At(1, 0), 1e-12)
}

func TestLassoPathMatchesLassoEstimator(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.2, -0.7}, 0.1, 25)

	alphas := []float64{5, 1, 0.5}
	path, err := LassoPath(X, y, WithPathAlphas(alphas), WithPathMaxIter(5000), WithPathTol(1e-10))
	require.NoError(t, err)

	for a, alpha := range path.Alphas {
		lasso := NewLasso(WithAlpha(alpha), WithMaxIter(5000), WithTol(1e-10))
		require.NoError(t, lasso.Fit(X, y))
		w := lasso.Weights()
		for j := range w {
			assert.InDelta(t, w[j], path.Coefs.At(a, j), 1e-6, "alpha=%v feature %d", alpha, j)
		}
		assert.InDelta(t, lasso.Intercept(), path.Intercepts[a], 1e-6)
	}
}

func TestElasticNetSparseMatchesDense(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.5, 0, -2.0}, 0.4, 30)
	// いくつかの成分をゼロにして疎にする
	for i := 0; i < 30; i += 3 {
		X.Set(i, 1, 0)
	}

	dense := NewElasticNet(WithAlpha(0.05), WithL1Ratio(0.7), WithMaxIter(5000), WithTol(1e-10))
	require.NoError(t, dense.Fit(X, y))

	sparse := NewElasticNet(WithAlpha(0.05), WithL1Ratio(0.7), WithMaxIter(5000), WithTol(1e-10))
	require.NoError(t, sparse.Fit(NewCSCFromDense(X), y))

	dw, sw := dense.Weights(), sparse.Weights()
	require.Len(t, sw, len(dw))
	for j := range dw {
		assert.InDelta(t, dw[j], sw[j], 1e-6, "feature %d", j)
	}
	assert.InDelta(t, dense.Intercept(), sparse.Intercept(), 1e-6)
}

func TestMultiTaskLassoJointSparsity(t *testing.T) {
	// 特徴量0と1だけが両タスクに効き、特徴量2は無関係
	n := 40
	X := mat.NewDense(n, 3, nil)
	Y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x0 := math.Sin(float64(i) * 0.7)
		x1 := math.Cos(float64(i) * 1.3)
		x2 := math.Sin(float64(i)*2.9 + 1) // noise feature
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		X.Set(i, 2, x2)
		Y.Set(i, 0, 2*x0+1*x1)
		Y.Set(i, 1, -1*x0+3*x1)
	}

	mtl := NewMultiTaskLasso(WithMultiTaskAlpha(0.1), WithMultiTaskMaxIter(5000), WithMultiTaskTol(1e-10))
	require.NoError(t, mtl.Fit(X, Y))

	W := mtl.Coef()
	rows, cols := W.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)

	// l2,1正則化は特徴量単位でゼロ化する: 各列は全タスクゼロか全タスク非ゼロ
	for j := 0; j < cols; j++ {
		zero0 := W.At(0, j) == 0
		zero1 := W.At(1, j) == 0
		assert.Equal(t, zero0, zero1, "feature %d must be zeroed jointly", j)
	}
	// 信号のある特徴量は残る
	assert.NotZero(t, W.At(0, 0))
	assert.NotZero(t, W.At(0, 1))
}

func TestMultiTaskLassoLargeAlphaZeroesEverything(t *testing.T) {
	X, y := makeLinearData(t, []float64{1, 2}, 0, 20)
	Y := mat.NewDense(20, 2, nil)
	for i := 0; i < 20; i++ {
		Y.Set(i, 0, y.At(i, 0))
		Y.Set(i, 1, -y.At(i, 0))
	}

	mtl := NewMultiTaskLasso(WithMultiTaskAlpha(1e6))
	require.NoError(t, mtl.Fit(X, Y))
	W := mtl.Coef()
	rows, cols := W.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Zero(t, W.At(i, j))
		}
	}
}

func TestConvergenceWarningOnTightBudget(t *testing.T) {
	var captured []error
	glearnerrors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer glearnerrors.SetWarningHandler(nil)

	X, y := makeLinearData(t, []float64{2.0, -1.0, 0.5, 1.2}, 0.3, 50)
	enet := NewElasticNet(WithAlpha(1e-6), WithMaxIter(1), WithTol(1e-15))
	require.NoError(t, enet.Fit(X, y))

	require.NotEmpty(t, captured)
	var cw *glearnerrors.ConvergenceWarning
	assert.ErrorAs(t, captured[0], &cw)
}
