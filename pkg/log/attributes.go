// Package log defines standard attribute keys for the evaluation pipeline.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that log lines from the loader, the estimators and the
// cross-validation runner can be filtered together.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of estimator.
	// Examples: "LinearRegression", "ElasticNet"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "load", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "evaluate", "model_selection"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the evaluation.
	// Examples: "training", "validation", "preprocessing"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// DroppedKey indicates the number of rows removed by missing-value cleaning.
	DroppedKey = "data.dropped"

	// SourceKey records where a dataset was loaded from.
	SourceKey = "data.source"

	// FormatKey records the on-disk format version of a dataset.
	FormatKey = "data.format"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey records the number of iterations an iterative solver ran.
	IterationKey = "training.iteration"

	// FoldKey records the cross-validation fold number (1-based).
	FoldKey = "cv.fold"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Hyperparameters and Configuration
const (
	// RegularizationKey records regularization strength (alpha).
	RegularizationKey = "hyperparams.regularization"

	// L1RatioKey records the elastic-net mixing parameter.
	L1RatioKey = "hyperparams.l1_ratio"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// SplitsKey records the number of cross-validation folds.
	SplitsKey = "config.splits"
)

// Standard attribute values.
const (
	OperationFit           = "fit"
	OperationLoad          = "load"
	OperationCrossValidate = "cross_validate"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
)
