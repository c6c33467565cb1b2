package cross_validation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/core/parallel"
	"github.com/YuminosukeSato/glearn/metrics"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
)

type crossValConfig struct {
	cv     Splitter
	nFolds int
	scorer *metrics.Scorer
	nJobs  int
}

// CrossValOption configures CrossValScore.
type CrossValOption func(*crossValConfig)

// WithCV supplies an explicit fold generator.
func WithCV(cv Splitter) CrossValOption {
	return func(c *crossValConfig) { c.cv = cv }
}

// WithNFolds sets the fold count used when no explicit cv is given.
func WithNFolds(nFolds int) CrossValOption {
	return func(c *crossValConfig) { c.nFolds = nFolds }
}

// WithScorer overrides the estimator's own Score method with a named metric.
func WithScorer(scorer metrics.Scorer) CrossValOption {
	return func(c *crossValConfig) { c.scorer = &scorer }
}

// WithNJobs sets the number of folds evaluated concurrently. Values <= 0
// use one worker per CPU.
func WithNJobs(nJobs int) CrossValOption {
	return func(c *crossValConfig) { c.nJobs = nJobs }
}

// CrossValScore evaluates an estimator by cross validation, fitting an
// independent clone per fold and scoring it on the held-out samples. Folds
// run concurrently. The estimator must implement model.Cloner; scoring uses
// the configured scorer, or the estimator's own Score method when none is
// given. Returned scores always follow the maximize convention: loss
// scorers are negated, so the best fold is the one with the highest score.
func CrossValScore(estimator model.Estimator, X, y mat.Matrix, options ...CrossValOption) ([]float64, error) {
	cfg := &crossValConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	cloner, ok := estimator.(model.Cloner)
	if !ok {
		return nil, errors.NewValueError("CrossValScore", "estimator does not support cloning")
	}
	if cfg.scorer == nil {
		if _, ok := estimator.(model.Scorer); !ok {
			return nil, errors.NewValueError("CrossValScore", "estimator has no Score method and no scorer was given")
		}
	}

	n, _ := X.Dims()
	yn, _ := y.Dims()
	if n != yn {
		return nil, errors.NewDimensionError("CrossValScore", n, yn, 0)
	}

	_, isClassifier := estimator.(model.Classifier)
	var labels []int
	if isClassifier {
		labels = intLabels(y)
	}
	cv, err := CheckCV(cfg.cv, cfg.nFolds, n, labels, isClassifier)
	if err != nil {
		return nil, err
	}

	folds := cv.Split()
	scores := make([]float64, len(folds))

	logger := log.GetLoggerWithName("cross_validation")
	logger.Debug("starting cross validation",
		log.FoldsKey, len(folds),
		log.SamplesKey, n,
	)

	err = parallel.MapError(len(folds), cfg.nJobs, func(i int) error {
		fold := folds[i].AsIndices()
		est := cloner.Clone()

		XTrain := takeRows(X, fold.Train)
		yTrain := takeRows(y, fold.Train)
		XTest := takeRows(X, fold.Test)
		yTest := takeRows(y, fold.Test)

		if err := est.Fit(XTrain, yTrain); err != nil {
			return errors.Wrapf(err, "fitting fold %d", i)
		}

		score, err := scoreEstimator(est, cfg.scorer, XTest, yTest)
		if err != nil {
			return errors.Wrapf(err, "scoring fold %d", i)
		}
		scores[i] = score
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// scoreEstimator evaluates a fitted estimator on held-out data, through the
// given scorer or the estimator's own Score method.
func scoreEstimator(est model.Estimator, scorer *metrics.Scorer, XTest, yTest *mat.Dense) (float64, error) {
	if scorer == nil {
		return est.(model.Scorer).Score(XTest, yTest)
	}
	predictor, ok := est.(model.Predictor)
	if !ok {
		return 0, errors.NewValueError("CrossValScore", "estimator has no Predict method required by the scorer")
	}
	pred, err := predictor.Predict(XTest)
	if err != nil {
		return 0, err
	}
	score, err := scorer.Score(denseColumn(yTest), denseColumn(pred))
	if err != nil {
		return 0, err
	}
	// 誤差系の指標は符号反転して「大きいほど良い」に揃える
	if !scorer.GreaterIsBetter {
		score = -score
	}
	return score, nil
}

// intLabels collapses a single-column target matrix to integer class labels.
func intLabels(y mat.Matrix) []int {
	n, _ := y.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = int(y.At(i, 0))
	}
	return labels
}

// denseColumn views the first column of m as a vector.
func denseColumn(m mat.Matrix) *mat.VecDense {
	n, _ := m.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
