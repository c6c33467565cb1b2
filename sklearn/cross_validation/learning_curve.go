package cross_validation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/core/parallel"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
)

// LearningCurveResult holds per-train-size scores. Rows of TrainScores and
// TestScores correspond to TrainSizes entries, columns to CV folds.
type LearningCurveResult struct {
	TrainSizes  []int
	TrainScores *mat.Dense
	TestScores  *mat.Dense
}

type learningCurveConfig struct {
	cv          Splitter
	nFolds      int
	trainSizes  []float64
	nJobs       int
	incremental bool
}

// LearningCurveOption configures LearningCurve.
type LearningCurveOption func(*learningCurveConfig)

// WithCurveCV supplies an explicit fold generator.
func WithCurveCV(cv Splitter) LearningCurveOption {
	return func(c *learningCurveConfig) { c.cv = cv }
}

// WithCurveNFolds sets the fold count used when no explicit cv is given.
func WithCurveNFolds(nFolds int) LearningCurveOption {
	return func(c *learningCurveConfig) { c.nFolds = nFolds }
}

// WithTrainSizes sets the training set sizes to evaluate, each a fraction
// in (0, 1] of the fold's training set or an absolute sample count.
func WithTrainSizes(sizes []float64) LearningCurveOption {
	return func(c *learningCurveConfig) { c.trainSizes = sizes }
}

// WithCurveNJobs sets the number of concurrent workers.
func WithCurveNJobs(nJobs int) LearningCurveOption {
	return func(c *learningCurveConfig) { c.nJobs = nJobs }
}

// WithExploitIncremental trains each fold once through PartialFit batches
// instead of refitting from scratch per train size. The estimator must
// implement model.IncrementalLearner.
func WithExploitIncremental(enabled bool) LearningCurveOption {
	return func(c *learningCurveConfig) { c.incremental = enabled }
}

// translateTrainSizes resolves fraction-or-count train size specs against
// the maximum available training set size. Fractions must lie in (0, 1];
// counts in (0, maxTrain]. Duplicates after resolution are removed with a
// TrainSizesWarning.
func translateTrainSizes(trainSizes []float64, maxTrain int) ([]int, error) {
	if len(trainSizes) == 0 {
		return nil, errors.NewValidationError("train_sizes", "must be non-empty", len(trainSizes))
	}

	resolved := make([]int, len(trainSizes))
	for i, size := range trainSizes {
		switch {
		case size <= 0:
			return nil, errors.NewValidationError("train_sizes", "sizes must be positive", size)
		case size <= 1:
			n := int(size * float64(maxTrain))
			if n < 1 {
				n = 1
			}
			resolved[i] = n
		default:
			if size != math.Trunc(size) {
				return nil, errors.NewValidationError("train_sizes", "fractions must lie within (0, 1]", size)
			}
			n := int(size)
			if n > maxTrain {
				return nil, errors.NewValidationError("train_sizes", "size exceeds the available training samples", size)
			}
			resolved[i] = n
		}
	}

	sort.Ints(resolved)
	unique := resolved[:0]
	for i, n := range resolved {
		if i == 0 || n != unique[len(unique)-1] {
			unique = append(unique, n)
		}
	}
	if len(unique) < len(trainSizes) {
		errors.Warn(errors.NewTrainSizesWarning(len(trainSizes), len(unique)))
	}
	return append([]int(nil), unique...), nil
}

// LearningCurve computes cross-validated train and test scores for
// increasing training set sizes. Each (fold, size) cell fits a fresh clone
// on a prefix of the fold's training indices; with incremental exploitation
// enabled, one clone per fold is instead advanced with PartialFit over
// successive index batches.
func LearningCurve(estimator model.Estimator, X, y mat.Matrix, options ...LearningCurveOption) (*LearningCurveResult, error) {
	cfg := &learningCurveConfig{
		trainSizes: []float64{0.1, 0.325, 0.55, 0.775, 1.0},
	}
	for _, opt := range options {
		opt(cfg)
	}

	cloner, ok := estimator.(model.Cloner)
	if !ok {
		return nil, errors.NewValueError("LearningCurve", "estimator does not support cloning")
	}
	if cfg.incremental {
		if _, ok := estimator.(model.IncrementalLearner); !ok {
			return nil, errors.NewValueError("LearningCurve", "incremental exploitation requires PartialFit support")
		}
	}

	n, _ := X.Dims()
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
	for i := range folds {
		folds[i] = folds[i].AsIndices()
	}

	maxTrain := n
	for _, fold := range folds {
		if len(fold.Train) < maxTrain {
			maxTrain = len(fold.Train)
		}
	}
	sizes, err := translateTrainSizes(cfg.trainSizes, maxTrain)
	if err != nil {
		return nil, err
	}

	result := &LearningCurveResult{
		TrainSizes:  sizes,
		TrainScores: mat.NewDense(len(sizes), len(folds), nil),
		TestScores:  mat.NewDense(len(sizes), len(folds), nil),
	}

	logger := log.GetLoggerWithName("learning_curve")
	logger.Debug("computing learning curve",
		log.FoldsKey, len(folds),
		log.SamplesKey, n,
		"train_sizes", len(sizes),
	)

	err = parallel.MapError(len(folds), cfg.nJobs, func(f int) error {
		fold := folds[f]
		XTest := takeRows(X, fold.Test)
		yTest := takeRows(y, fold.Test)

		if cfg.incremental {
			return incrementalCurveFold(cloner, X, y, fold, sizes, labels, XTest, yTest, result, f)
		}

		for s, size := range sizes {
			est := cloner.Clone()
			trainIdx := fold.Train[:size]
			if err := est.Fit(takeRows(X, trainIdx), takeRows(y, trainIdx)); err != nil {
				return errors.Wrapf(err, "fitting fold %d with %d samples", f, size)
			}
			if err := recordCurveScores(est, X, y, trainIdx, XTest, yTest, result, s, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// incrementalCurveFold advances a single clone with PartialFit batches so
// each train size extends the previous one instead of refitting.
func incrementalCurveFold(cloner model.Cloner, X, y mat.Matrix, fold Fold, sizes, labels []int, XTest, yTest *mat.Dense, result *LearningCurveResult, f int) error {
	est := cloner.Clone()
	learner := est.(model.IncrementalLearner)

	var classes []int
	if labels != nil {
		classes = distinctSorted(labels)
	}

	prev := 0
	for s, size := range sizes {
		batch := fold.Train[prev:size]
		if err := learner.PartialFit(takeRows(X, batch), takeRows(y, batch), classes); err != nil {
			return errors.Wrapf(err, "partial fit on fold %d with %d samples", f, size)
		}
		prev = size
		if err := recordCurveScores(est, X, y, fold.Train[:size], XTest, yTest, result, s, f); err != nil {
			return err
		}
	}
	return nil
}

// recordCurveScores stores the train and test score of a fitted estimator
// in the (size, fold) cell of the result matrices.
func recordCurveScores(est model.Estimator, X, y mat.Matrix, trainIdx []int, XTest, yTest *mat.Dense, result *LearningCurveResult, s, f int) error {
	scorer, ok := est.(model.Scorer)
	if !ok {
		return errors.NewValueError("LearningCurve", "estimator has no Score method")
	}
	trainScore, err := scorer.Score(takeRows(X, trainIdx), takeRows(y, trainIdx))
	if err != nil {
		return err
	}
	testScore, err := scorer.Score(XTest, yTest)
	if err != nil {
		return err
	}
	result.TrainScores.Set(s, f, trainScore)
	result.TestScores.Set(s, f, testScore)
	return nil
}
