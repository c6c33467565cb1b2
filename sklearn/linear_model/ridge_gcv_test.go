package linear_model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/sklearn/cross_validation"
)

// bruteForceLOOErrors は各標本を除いて学習し直す素朴なleave-one-outで
// alphaごとの二乗誤差を計算する
func bruteForceLOOErrors(t *testing.T, X, y *mat.Dense, alpha float64, fitIntercept bool) []float64 {
	t.Helper()
	n, p := X.Dims()
	errs := make([]float64, n)
	for held := 0; held < n; held++ {
		Xtr := mat.NewDense(n-1, p, nil)
		ytr := mat.NewDense(n-1, 1, nil)
		row := 0
		for i := 0; i < n; i++ {
			if i == held {
				continue
			}
			for j := 0; j < p; j++ {
				Xtr.Set(row, j, X.At(i, j))
			}
			ytr.Set(row, 0, y.At(i, 0))
			row++
		}

		ridge := NewRidge(WithRidgeAlpha(alpha), WithRidgeFitIntercept(fitIntercept))
		require.NoError(t, ridge.Fit(Xtr, ytr))

		pred := ridge.Intercept()
		for j := 0; j < p; j++ {
			pred += ridge.Weights()[j] * X.At(held, j)
		}
		d := y.At(held, 0) - pred
		errs[held] = d * d
	}
	return errs
}

func TestRidgeGCVMatchesBruteForceLOO(t *testing.T) {
	// 閉形式のLOO誤差は、実際にn回学習し直した誤差と一致する
	X, y := makeLinearData(t, []float64{1.5, -0.5}, 0, 12)

	alphas := []float64{0.5, 2.0}
	gcv := NewRidgeGCV(
		WithGCVAlphas(alphas),
		WithGCVFitIntercept(false),
		WithStoreCVValues(true),
	)
	require.NoError(t, gcv.Fit(X, y))

	values := gcv.CVValues()
	require.NotNil(t, values)
	rows, cols := values.Dims()
	require.Equal(t, 12, rows)
	require.Equal(t, 2, cols)

	for a, alpha := range alphas {
		expected := bruteForceLOOErrors(t, X, y, alpha, false)
		for i := 0; i < rows; i++ {
			assert.InDelta(t, expected[i], values.At(i, a), 1e-6,
				"alpha=%v sample %d", alpha, i)
		}
	}
}

func TestRidgeGCVEigenAndSVDAgree(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0, 0.3}, 0.4, 20)
	alphas := []float64{0.1, 1.0, 10.0}

	svd := NewRidgeGCV(WithGCVAlphas(alphas), WithGCVMode(GCVModeSVD), WithStoreCVValues(true))
	require.NoError(t, svd.Fit(X, y))

	eigen := NewRidgeGCV(WithGCVAlphas(alphas), WithGCVMode(GCVModeEigen), WithStoreCVValues(true))
	require.NoError(t, eigen.Fit(X, y))

	assert.Equal(t, svd.Alpha(), eigen.Alpha())

	sv, ev := svd.CVValues(), eigen.CVValues()
	rows, cols := sv.Dims()
	for i := 0; i < rows; i++ {
		for a := 0; a < cols; a++ {
			assert.InDelta(t, sv.At(i, a), ev.At(i, a), 1e-8, "sample %d alpha %d", i, a)
		}
	}

	// 選ばれたモデルの係数も一致する
	sw, ew := svd.Coef(), eigen.Coef()
	_, p := sw.Dims()
	for j := 0; j < p; j++ {
		assert.InDelta(t, sw.At(0, j), ew.At(0, j), 1e-8)
	}
}

func TestRidgeGCVPicksLowRegularizationOnCleanData(t *testing.T) {
	// ノイズなしの線形データでは最小のalphaが最良になる
	X, y := makeLinearData(t, []float64{3.0, -2.0}, 0.1, 25)

	gcv := NewRidgeGCV(WithGCVAlphas([]float64{1e-6, 1.0, 100.0}))
	require.NoError(t, gcv.Fit(X, y))
	assert.Equal(t, 1e-6, gcv.Alpha())

	score, err := gcv.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.999)
}

func TestRidgeGCVWideData(t *testing.T) {
	// nFeatures > nSamples ではautoがeigenを選ぶ
	n, p := 8, 15
	X := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		target := 0.0
		for j := 0; j < p; j++ {
			v := float64((i*7+j*3)%11) * 0.2
			X.Set(i, j, v)
			if j < 2 {
				target += v
			}
		}
		y.Set(i, 0, target)
	}

	gcv := NewRidgeGCV(WithGCVAlphas([]float64{0.1, 1.0}))
	require.NoError(t, gcv.Fit(X, y))
	assert.True(t, gcv.IsFitted())
	assert.Contains(t, []float64{0.1, 1.0}, gcv.Alpha())
}

func TestRidgeCVDelegatesToGCV(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0}, 0.3, 20)

	cv := NewRidgeCV(WithRidgeCVAlphas([]float64{1e-6, 1.0, 100.0}))
	require.NoError(t, cv.Fit(X, y))
	assert.Equal(t, 1e-6, cv.Alpha())
}

func TestRidgeCVGridSearchWithExplicitFolds(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0}, 0.3, 24)

	kf, err := cross_validation.NewKFold(24, 4)
	require.NoError(t, err)

	cv := NewRidgeCV(
		WithRidgeCVAlphas([]float64{1e-6, 1.0, 100.0}),
		WithRidgeCVSplitter(kf),
	)
	require.NoError(t, cv.Fit(X, y))
	assert.Equal(t, 1e-6, cv.Alpha())

	score, err := cv.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.999)
}

func TestRidgeClassifierCVSelectsAlpha(t *testing.T) {
	n := 20
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if i < n/2 {
			X.Set(i, 0, 3+float64(i%5)*0.2)
			X.Set(i, 1, 1)
			y.Set(i, 0, 1)
		} else {
			X.Set(i, 0, -3-float64(i%5)*0.2)
			X.Set(i, 1, -1)
			y.Set(i, 0, 0)
		}
	}

	clf := NewRidgeClassifierCV(WithClassifierCVAlphas([]float64{0.01, 1.0, 100.0}))
	require.NoError(t, clf.Fit(X, y))
	assert.Equal(t, []int{0, 1}, clf.Classes())
	assert.Contains(t, []float64{0.01, 1.0, 100.0}, clf.Alpha())

	score, err := clf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}
