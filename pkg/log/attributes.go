// Package log defines standard attribute keys for classifier and service logs.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that log records from training, evaluation and the
// HTTP layer can be filtered the same way.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "GaussianNB".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one model instance. The service uses the
	// dataset name since it trains exactly one model per dataset.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "naive_bayes", "evaluation", "http"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// DatasetKey names the dataset a record refers to.
	DatasetKey = "data.name"

	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct classes.
	ClassesKey = "data.classes"

	// PathKey is the file a dataset was read from.
	PathKey = "data.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// HTTP request context
const (
	RequestIDKey  = "http.request_id"
	MethodKey     = "http.method"
	RouteKey      = "http.route"
	StatusCodeKey = "http.status"
	ClientIPKey   = "http.client_ip"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code, e.g. "DIMENSION_MISMATCH".
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// VarSmoothingKey records the variance smoothing factor of GaussianNB.
	VarSmoothingKey = "hyperparams.var_smoothing"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationEvaluate = "evaluate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"
	PhaseStartup    = "startup"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorDegenerateClass   = "DEGENERATE_CLASS"
	ErrorZeroVariance      = "ZERO_VARIANCE"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorPanic             = "PANIC"
)
