// Standard attribute keys for machine learning operations.
//
// Using these keys consistently enables filtering and analysis of training
// and evaluation logs. Keys follow a hierarchical naming convention
// (e.g. "model.name", "data.samples").

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "ElasticNet", "Ridge", "SGDClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "partial_fit"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear_model", "cross_validation", "metrics"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// TargetsKey is the number of target variables for supervised learning.
	TargetsKey = "data.targets"
)

// Training and evaluation metrics.
const (
	// DurationMsKey records operation execution time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey is the iteration count reached by an iterative solver.
	IterationKey = "training.iteration"

	// DualGapKey is the duality gap at coordinate descent termination.
	DualGapKey = "training.dual_gap"

	// AlphaKey is the regularization strength in use or selected by CV.
	AlphaKey = "hyperparams.alpha"

	// FoldsKey is the number of cross-validation folds.
	FoldsKey = "cv.folds"

	// ScoreKey is an evaluation score (R², accuracy, or scorer output).
	ScoreKey = "metrics.score"
)

// Standard attribute values for common operations.
const (
	OperationFit        = "fit"
	OperationPredict    = "predict"
	OperationScore      = "score"
	OperationPartialFit = "partial_fit"
	OperationSplit      = "split"
	OperationPath       = "path"
)
