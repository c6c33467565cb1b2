// Package model provides the common interfaces and state management shared by
// all estimators in glearn.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction
	// for regressors, or the mean accuracy for classifiers.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// IncrementalLearner is the interface for models that support incremental
// learning. Cross-validation utilities use it to train on successive data
// slices without refitting from scratch.
type IncrementalLearner interface {
	// PartialFit performs one epoch of training on the given samples.
	// classes lists all class labels for classification problems and is
	// required on the first call only; regressors pass nil.
	PartialFit(X mat.Matrix, y mat.Matrix, classes []int) error
}

// Cloner is the interface for estimators that can produce an unfitted copy
// of themselves with identical hyperparameters. Cross-validation scoring and
// learning curves clone the supplied estimator once per fold so that folds
// never share fitted state.
type Cloner interface {
	// Clone returns a new unfitted estimator with the same hyperparameters.
	Clone() Estimator
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Predictor
	Scorer
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Predictor
	Scorer

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// RegressorWithPartialFit combines interfaces for online regression models.
type RegressorWithPartialFit interface {
	Regressor
	IncrementalLearner
}

// ClassifierWithPartialFit combines interfaces for online classification models.
type ClassifierWithPartialFit interface {
	Classifier
	IncrementalLearner
}
