package linear_model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/glearn/sklearn/cross_validation"
)

func TestLassoCVPicksSmallAlphaOnLinearData(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.5, 0.5}, 0.3, 60)

	lcv := NewLassoCV(WithCVNAlphas(30), WithCVNFolds(3))
	require.NoError(t, lcv.Fit(X, y))

	alphas := lcv.Alphas()
	require.Len(t, alphas, 30)
	// 線形関係が正確なデータではグリッドの小さい側が選ばれる
	assert.Less(t, lcv.Alpha(), alphas[0])
	assert.Equal(t, 1.0, lcv.L1Ratio())

	score, err := lcv.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestLassoCVMSEPathShape(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.0, -2.0}, 0, 40)

	kf, err := cross_validation.NewKFold(40, 4)
	require.NoError(t, err)

	lcv := NewLassoCV(WithCVNAlphas(10), WithCVSplitter(kf))
	require.NoError(t, lcv.Fit(X, y))

	rows, cols := lcv.MSEPath().Dims()
	assert.Equal(t, 10, rows)
	assert.Equal(t, 4, cols)
	assert.Len(t, lcv.MSEMean(), 10)

	alphas := lcv.Alphas()
	for i := 1; i < len(alphas); i++ {
		assert.Less(t, alphas[i], alphas[i-1], "alpha grid must be descending")
	}

	// 選ばれたalphaは平均MSEの最小点と一致する
	best, bestMSE := 0, lcv.MSEMean()[0]
	for i, m := range lcv.MSEMean() {
		if m < bestMSE {
			best, bestMSE = i, m
		}
	}
	assert.Equal(t, alphas[best], lcv.Alpha())
}

func TestLassoCVExplicitAlphaGrid(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0}, 0, 30)

	lcv := NewLassoCV(WithCVAlphas([]float64{0.001, 1.0, 100.0}), WithCVNFolds(3))
	require.NoError(t, lcv.Fit(X, y))

	assert.Equal(t, []float64{100.0, 1.0, 0.001}, lcv.Alphas())
	assert.Equal(t, 0.001, lcv.Alpha())
}

func TestElasticNetCVSelectsL1Ratio(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0, 0.8}, 0.2, 60)

	ecv := NewElasticNetCV(
		WithCVL1Ratios([]float64{0.2, 0.8}),
		WithCVNAlphas(20),
		WithCVNFolds(3),
	)
	require.NoError(t, ecv.Fit(X, y))

	assert.Contains(t, []float64{0.2, 0.8}, ecv.L1Ratio())
	assert.Greater(t, ecv.Alpha(), 0.0)
	assert.Len(t, ecv.Weights(), 3)

	score, err := ecv.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestElasticNetCVParallelMatchesSequential(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.0, -1.0}, 0.1, 48)

	seq := NewElasticNetCV(WithCVNAlphas(15), WithCVNFolds(4), WithCVNJobs(1))
	require.NoError(t, seq.Fit(X, y))

	par := NewElasticNetCV(WithCVNAlphas(15), WithCVNFolds(4), WithCVNJobs(4))
	require.NoError(t, par.Fit(X, y))

	assert.Equal(t, seq.Alpha(), par.Alpha())
	assert.InDeltaSlice(t, seq.Weights(), par.Weights(), 1e-12)
}

func TestElasticNetCVPredictBeforeFit(t *testing.T) {
	X, _ := makeLinearData(t, []float64{1.0}, 0, 5)
	ecv := NewElasticNetCV()
	_, err := ecv.Predict(X)
	assert.Error(t, err)
	assert.False(t, ecv.IsFitted())
}

func TestLassoCVCloneIsUnfitted(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0}, 0, 30)

	lcv := NewLassoCV(WithCVNAlphas(5), WithCVNFolds(3))
	require.NoError(t, lcv.Fit(X, y))

	clone, ok := lcv.Clone().(*LassoCV)
	require.True(t, ok)
	assert.False(t, clone.IsFitted())
	require.NoError(t, clone.Fit(X, y))
	assert.Equal(t, lcv.Alpha(), clone.Alpha())
}
