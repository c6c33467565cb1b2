package cross_validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// runningMeanRegressor is a meanRegressor that also supports PartialFit,
// keeping a running mean over all batches seen so far.
type runningMeanRegressor struct {
	meanRegressor
	sum   float64
	count int
}

func (r *runningMeanRegressor) PartialFit(X, y mat.Matrix, classes []int) error {
	n, _ := y.Dims()
	for i := 0; i < n; i++ {
		r.sum += y.At(i, 0)
	}
	r.count += n
	if r.count == 0 {
		return errors.ErrEmptyData
	}
	r.mean = r.sum / float64(r.count)
	r.fitted = true
	return nil
}

func (r *runningMeanRegressor) Clone() model.Estimator { return &runningMeanRegressor{} }

func TestTranslateTrainSizes(t *testing.T) {
	sizes, err := translateTrainSizes([]float64{0.5, 1.0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10}, sizes)

	sizes, err = translateTrainSizes([]float64{2, 6}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6}, sizes)
}

func TestTranslateTrainSizesClampsTinyFractions(t *testing.T) {
	sizes, err := translateTrainSizes([]float64{0.01, 0.5}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, sizes)
}

func TestTranslateTrainSizesDeduplicatesWithWarning(t *testing.T) {
	var captured []error
	errors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer errors.SetWarningHandler(nil)

	sizes, err := translateTrainSizes([]float64{0.1, 0.15, 1.0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10}, sizes)

	require.Len(t, captured, 1)
	var tw *errors.TrainSizesWarning
	require.ErrorAs(t, captured[0], &tw)
	assert.Equal(t, 3, tw.Requested)
	assert.Equal(t, 2, tw.Unique)
}

func TestTranslateTrainSizesInvalid(t *testing.T) {
	_, err := translateTrainSizes([]float64{0}, 10)
	assert.Error(t, err)

	_, err = translateTrainSizes([]float64{11}, 10)
	assert.Error(t, err)

	_, err = translateTrainSizes([]float64{1.5}, 10)
	assert.Error(t, err)

	_, err = translateTrainSizes(nil, 10)
	assert.Error(t, err)
}

func TestLearningCurveShapes(t *testing.T) {
	n := 30
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i))
	}

	result, err := LearningCurve(&meanRegressor{}, X, y,
		WithCurveNFolds(3),
		WithTrainSizes([]float64{0.25, 0.5, 1.0}),
	)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 10, 20}, result.TrainSizes)
	rows, cols := result.TrainScores.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	rows, cols = result.TestScores.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
}

func TestLearningCurveConstantTarget(t *testing.T) {
	// A mean predictor on a constant target is perfect at every size.
	n := 12
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, 3.0)
	}

	result, err := LearningCurve(&meanRegressor{}, X, y,
		WithCurveNFolds(3),
		WithTrainSizes([]float64{0.5, 1.0}),
	)
	require.NoError(t, err)

	rows, cols := result.TestScores.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.InDelta(t, 1.0, result.TestScores.At(i, j), 1e-12)
			assert.InDelta(t, 1.0, result.TrainScores.At(i, j), 1e-12)
		}
	}
}

func TestLearningCurveIncrementalMatchesBatch(t *testing.T) {
	// The running mean over successive batches equals the batch mean over
	// the same prefix, so both paths must produce identical scores.
	n := 24
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i%5))
	}

	batch, err := LearningCurve(&meanRegressor{}, X, y,
		WithCurveNFolds(4),
		WithTrainSizes([]float64{0.5, 1.0}),
	)
	require.NoError(t, err)

	incremental, err := LearningCurve(&runningMeanRegressor{}, X, y,
		WithCurveNFolds(4),
		WithTrainSizes([]float64{0.5, 1.0}),
		WithExploitIncremental(true),
	)
	require.NoError(t, err)

	assert.Equal(t, batch.TrainSizes, incremental.TrainSizes)
	rows, cols := batch.TestScores.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.InDelta(t, batch.TestScores.At(i, j), incremental.TestScores.At(i, j), 1e-12)
		}
	}
}

func TestLearningCurveIncrementalRequiresPartialFit(t *testing.T) {
	n := 10
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)

	_, err := LearningCurve(&meanRegressor{}, X, y, WithExploitIncremental(true))
	assert.Error(t, err)
}
