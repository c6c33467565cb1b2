package cross_validation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/metrics"
	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// meanRegressor predicts the mean of its training targets. Simple enough
// that fold scores are easy to reason about, yet it exercises the full
// clone/fit/score cycle.
type meanRegressor struct {
	mean   float64
	fitted bool
}

func (m *meanRegressor) Fit(X, y mat.Matrix) error {
	n, _ := y.Dims()
	if n == 0 {
		return errors.ErrEmptyData
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += y.At(i, 0)
	}
	m.mean = sum / float64(n)
	m.fitted = true
	return nil
}

func (m *meanRegressor) IsFitted() bool { return m.fitted }

func (m *meanRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.fitted {
		return nil, errors.NewNotFittedError("meanRegressor", "Predict")
	}
	n, _ := X.Dims()
	pred := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		pred.Set(i, 0, m.mean)
	}
	return pred, nil
}

func (m *meanRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	yMean := 0.0
	for i := 0; i < n; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(n)
	rss, tss := 0.0, 0.0
	for i := 0; i < n; i++ {
		d := y.At(i, 0) - pred.At(i, 0)
		rss += d * d
		t := y.At(i, 0) - yMean
		tss += t * t
	}
	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - rss/tss, nil
}

func (m *meanRegressor) Clone() model.Estimator { return &meanRegressor{} }

// majorityClassifier predicts the most frequent training label.
type majorityClassifier struct {
	meanRegressor
	classes []int
}

func (m *majorityClassifier) Fit(X, y mat.Matrix) error {
	n, _ := y.Dims()
	counts := make(map[int]int)
	for i := 0; i < n; i++ {
		counts[int(y.At(i, 0))]++
	}
	best, bestCount := 0, -1
	m.classes = m.classes[:0]
	for label, count := range counts {
		m.classes = append(m.classes, label)
		if count > bestCount {
			best, bestCount = label, count
		}
	}
	sort.Ints(m.classes)
	m.mean = float64(best)
	m.fitted = true
	return nil
}

func (m *majorityClassifier) Classes() []int { return m.classes }

func (m *majorityClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if int(y.At(i, 0)) == int(pred.At(i, 0)) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

func (m *majorityClassifier) Clone() model.Estimator { return &majorityClassifier{} }

func constantFeatures(n int) *mat.Dense {
	X := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
	}
	return X
}

func TestCrossValScoreFoldCount(t *testing.T) {
	n := 12
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i%3))
	}

	scores, err := CrossValScore(&meanRegressor{}, X, y, WithNFolds(4))
	require.NoError(t, err)
	assert.Len(t, scores, 4)
}

func TestCrossValScorePerfectEstimator(t *testing.T) {
	// Constant targets: the mean predictor is exact on every fold.
	n := 9
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, 5.0)
	}

	scores, err := CrossValScore(&meanRegressor{}, X, y)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.InDelta(t, 1.0, s, 1e-12)
	}
}

func TestCrossValScoreUsesStratifiedCVForClassifiers(t *testing.T) {
	// Single-class folds would score 0 under plain contiguous k-fold; the
	// stratified default keeps both classes in every training set.
	n := 12
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if i >= 8 {
			y.Set(i, 0, 1)
		}
	}

	scores, err := CrossValScore(&majorityClassifier{}, X, y, WithNFolds(4))
	require.NoError(t, err)
	for _, s := range scores {
		assert.Greater(t, s, 0.0)
	}
}

func TestCrossValScoreWithScorer(t *testing.T) {
	n := 8
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, 2.0)
	}

	scorer, err := metrics.GetScorer("mean_squared_error")
	require.NoError(t, err)

	scores, err := CrossValScore(&meanRegressor{}, X, y, WithScorer(scorer), WithNFolds(2))
	require.NoError(t, err)
	for _, s := range scores {
		assert.InDelta(t, 0.0, s, 1e-12)
	}
}

func TestCrossValScoreNegatesLossScorers(t *testing.T) {
	n := 12
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i))
	}

	mse, err := metrics.GetScorer("mean_squared_error")
	require.NoError(t, err)
	negMSE, err := metrics.GetScorer("neg_mean_squared_error")
	require.NoError(t, err)

	// 平均予測は外れるので誤差は正、返り値は負になる
	rawScores, err := CrossValScore(&meanRegressor{}, X, y, WithScorer(mse), WithNFolds(3))
	require.NoError(t, err)
	for _, s := range rawScores {
		assert.Negative(t, s)
	}

	// neg_付きスコアラーは既に符号反転済みなので、結果は同じ値になる
	negScores, err := CrossValScore(&meanRegressor{}, X, y, WithScorer(negMSE), WithNFolds(3))
	require.NoError(t, err)
	assert.InDeltaSlice(t, rawScores, negScores, 1e-12)
}

func TestCrossValScoreAcceptsMaskFolds(t *testing.T) {
	n := 12
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i))
	}

	plain, err := NewKFold(n, 3)
	require.NoError(t, err)
	masked, err := NewKFold(n, 3, WithIndicesAsMask(true))
	require.NoError(t, err)

	plainScores, err := CrossValScore(&meanRegressor{}, X, y, WithCV(plain))
	require.NoError(t, err)
	maskScores, err := CrossValScore(&meanRegressor{}, X, y, WithCV(masked))
	require.NoError(t, err)
	assert.Equal(t, plainScores, maskScores)
}

func TestCrossValScorePropagatesFitErrors(t *testing.T) {
	X := mat.NewDense(4, 1, nil)
	y := mat.NewDense(3, 1, nil)
	_, err := CrossValScore(&meanRegressor{}, X, y)
	assert.Error(t, err)
}

func TestCrossValScoreSequentialAndParallelAgree(t *testing.T) {
	n := 20
	X := constantFeatures(n)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i)*0.5)
	}

	sequential, err := CrossValScore(&meanRegressor{}, X, y, WithNFolds(5), WithNJobs(1))
	require.NoError(t, err)
	parallelScores, err := CrossValScore(&meanRegressor{}, X, y, WithNFolds(5), WithNJobs(4))
	require.NoError(t, err)
	assert.Equal(t, sequential, parallelScores)
}
