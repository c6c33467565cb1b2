package linear_model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
)

func TestPAStepSize(t *testing.T) {
	cfg := paConfig{c: 0.5}

	// PA-Iは損失/‖x‖²をCで頭打ちにする
	assert.InDelta(t, 0.25, cfg.stepSize(1.0, 4.0, false), 1e-12)
	assert.InDelta(t, 0.5, cfg.stepSize(10.0, 4.0, false), 1e-12)
	assert.Zero(t, cfg.stepSize(1.0, 0.0, false))

	// PA-IIは頭打ちの代わりに分母へ1/(2C)を加える
	assert.InDelta(t, 1.0/5.0, cfg.stepSize(1.0, 4.0, true), 1e-12)
}

func TestPARegressorLearnsLinearRelation(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, -1.0}, 0.5, 50)

	pa := NewPassiveAggressiveRegressor(
		WithPARegressorNIter(50),
		WithPARegressorEpsilon(0.01),
		WithPARegressorSeed(7),
	)
	require.NoError(t, pa.Fit(X, y))

	score, err := pa.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
	assert.InDeltaSlice(t, []float64{2.0, -1.0}, pa.Weights(), 0.1)
}

func TestPARegressorPassiveInsideTube(t *testing.T) {
	// 全標本が許容帯の中にあれば重みは一切動かない
	n := 10
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.Set(i, 0, 0.01)
	}

	pa := NewPassiveAggressiveRegressor(WithPARegressorEpsilon(1.0))
	require.NoError(t, pa.Fit(X, y))

	assert.Zero(t, pa.Weights()[0])
	assert.Zero(t, pa.Intercept())
}

func TestPARegressorSquaredLossVariant(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.5}, 0, 40)

	pa := NewPassiveAggressiveRegressor(
		WithPARegressorLoss("squared_epsilon_insensitive"),
		WithPARegressorC(0.1),
		WithPARegressorNIter(100),
		WithPARegressorEpsilon(0.01),
		WithPARegressorSeed(3),
	)
	require.NoError(t, pa.Fit(X, y))

	score, err := pa.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.95)
}

func TestPARegressorValidation(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.0}, 0, 10)

	assert.Error(t, NewPassiveAggressiveRegressor(WithPARegressorC(0)).Fit(X, y))
	assert.Error(t, NewPassiveAggressiveRegressor(WithPARegressorLoss("hinge")).Fit(X, y))
	assert.Error(t, NewPassiveAggressiveRegressor(WithPARegressorEpsilon(-1)).Fit(X, y))
}

func TestPARegressorPartialFitAndStream(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0}, 0, 30)

	pa := NewPassiveAggressiveRegressor(WithPARegressorSeed(5), WithPARegressorEpsilon(0.01))
	for i := 0; i < 30; i++ {
		require.NoError(t, pa.PartialFit(X, y, nil))
	}
	assert.Equal(t, 30, pa.NIterations())
	assert.Len(t, pa.GetLossHistory(), 30)

	score, err := pa.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.95)

	batches := make(chan *model.Batch, 1)
	batches <- &model.Batch{X: X, Y: y}
	close(batches)

	streamed := NewPassiveAggressiveRegressor(WithPARegressorEpsilon(0.01))
	require.NoError(t, streamed.FitStream(context.Background(), batches))
	assert.True(t, streamed.IsFitted())
}

func TestPAClassifierBinarySeparable(t *testing.T) {
	X, y := classifierTrainingData(t)

	pa := NewPassiveAggressiveClassifier(WithPAClassifierNIter(10), WithPAClassifierSeed(9))
	require.NoError(t, pa.Fit(X, y))

	assert.Equal(t, []int{0, 1}, pa.Classes())

	scores, err := pa.DecisionFunction(X)
	require.NoError(t, err)
	_, cols := scores.Dims()
	assert.Equal(t, 1, cols)

	accuracy, err := pa.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestPAClassifierMulticlass(t *testing.T) {
	X, y := multiclassTrainingData(t)

	pa := NewPassiveAggressiveClassifier(WithPAClassifierNIter(20), WithPAClassifierSeed(11))
	require.NoError(t, pa.Fit(X, y))

	assert.Equal(t, []int{0, 1, 2}, pa.Classes())
	accuracy, err := pa.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestPAClassifierSquaredHinge(t *testing.T) {
	X, y := classifierTrainingData(t)

	pa := NewPassiveAggressiveClassifier(
		WithPAClassifierLoss("squared_hinge"),
		WithPAClassifierNIter(10),
		WithPAClassifierSeed(13),
	)
	require.NoError(t, pa.Fit(X, y))

	accuracy, err := pa.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestPAClassifierPartialFitRequiresClasses(t *testing.T) {
	X, y := classifierTrainingData(t)

	pa := NewPassiveAggressiveClassifier()
	assert.Error(t, pa.PartialFit(X, y, nil))

	require.NoError(t, pa.PartialFit(X, y, []int{0, 1}))
	assert.True(t, pa.IsFitted())

	badX := mat.NewDense(1, 2, []float64{1, 1})
	badY := mat.NewDense(1, 1, []float64{5})
	assert.Error(t, pa.PartialFit(badX, badY, nil))
}

func TestPAClassifierSingleClassRejected(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{1, 1, 1, 1})

	pa := NewPassiveAggressiveClassifier()
	assert.Error(t, pa.Fit(X, y))
}

func TestPACloneIsUnfitted(t *testing.T) {
	reg := NewPassiveAggressiveRegressor(WithPARegressorC(0.5))
	regClone, ok := reg.Clone().(*PassiveAggressiveRegressor)
	require.True(t, ok)
	assert.False(t, regClone.IsFitted())

	clf := NewPassiveAggressiveClassifier(WithPAClassifierC(2.0))
	clfClone, ok := clf.Clone().(*PassiveAggressiveClassifier)
	require.True(t, ok)
	assert.False(t, clfClone.IsFitted())
}
