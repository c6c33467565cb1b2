// Package glearn provides scikit-learn style linear models and model
// selection utilities for Go.
//
// The library covers coordinate-descent solvers for Lasso and ElasticNet
// (with dual-gap convergence certificates), the Ridge solver family
// (cholesky, kernelized, SVD, conjugate gradient, LSQR, and generalized
// cross-validation), stochastic gradient descent estimators for regression
// and classification, passive-aggressive online learners, and a
// cross-validation engine with fold generators, parallel scoring, and
// learning curves.
//
// # Quick Start
//
// Fit a ridge model and score it with k-fold cross-validation:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/YuminosukeSato/glearn/sklearn/cross_validation"
//	    "github.com/YuminosukeSato/glearn/sklearn/linear_model"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})
//
//	    ridge := linear_model.NewRidge(linear_model.WithRidgeAlpha(0.1))
//	    if err := ridge.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    scores, err := cross_validation.CrossValScore(ridge, X, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("CV scores:", scores)
//	}
//
// # Packages
//
//   - sklearn/linear_model: ElasticNet, Lasso, Ridge, SGD, and
//     passive-aggressive estimators plus their CV variants
//   - sklearn/cross_validation: fold generators, CrossValScore,
//     TrainTestSplit, LearningCurve
//   - metrics: regression and classification metrics, scorer lookup
//   - core/model: estimator capability interfaces, fitted-state tracking,
//     weight persistence
//   - core/parallel: bounded-concurrency helpers used by the CV engine
//   - pkg/errors: structured errors and non-fatal warnings
//   - pkg/log: zerolog-backed logging of solver internals
//
// All estimators follow the same contract: option-function constructors,
// Fit/Predict/Score methods on gonum matrices, explicit NotFittedError
// before training, and Clone for use with the cross-validation engine.
package glearn
