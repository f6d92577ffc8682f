// Package log defines standard attribute keys for text classification logging.
//
// Keys follow a dotted naming convention (e.g. "nb.labels", "data.examples")
// so that log lines emitted by the classifier, the dataset readers and the
// CLI can be filtered the same way.

package log

// Component and operation context.
const (
	// ComponentKey identifies which package emitted the record.
	// Examples: "naive_bayes", "model_selection", "store"
	ComponentKey = "textnb.component"

	// OperationKey names the classifier operation being performed.
	OperationKey = "textnb.operation"

	// ModelNameKey is the registry name of a persisted model.
	ModelNameKey = "model.name"

	// ModelTypeKey is the envelope type of a persisted model, e.g. "NaiveBayes".
	ModelTypeKey = "model.type"
)

// Classifier state.
const (
	// LabelKey is a single class label.
	LabelKey = "nb.label"

	// LabelsKey is the number of distinct labels learned so far.
	LabelsKey = "nb.labels"

	// VocabularyKey is the number of distinct tokens learned so far.
	VocabularyKey = "nb.vocabulary"

	// TokensKey is the number of tokens produced by the prep pipeline for one input.
	TokensKey = "nb.tokens"

	// SmoothingKey is the effective smoothing factor.
	SmoothingKey = "nb.smoothing"

	// PresenceKey reports whether only token presence is counted.
	PresenceKey = "nb.presence_only"

	// PredictionKey is the label chosen by Predict.
	PredictionKey = "nb.prediction"

	// OddsKey is the winning odds value.
	OddsKey = "nb.odds"
)

// Data and evaluation.
const (
	// ExamplesKey is the number of (input, label) examples processed.
	ExamplesKey = "data.examples"

	// BatchSizeKey is the number of inputs in a batch call.
	BatchSizeKey = "data.batch_size"

	// SourceKey is the file or stream the examples were read from.
	SourceKey = "data.source"

	// FoldKey is the zero based cross validation fold index.
	FoldKey = "cv.fold"

	// AccuracyKey is the share of correctly classified evaluation examples.
	AccuracyKey = "metrics.accuracy"

	// FMeasureKey is the macro averaged F-measure.
	FMeasureKey = "metrics.f_measure"

	// DurationMsKey is the wall time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkerIDKey identifies a worker goroutine in parallel prediction.
	WorkerIDKey = "infra.worker_id"
)

// Error context.
const (
	// ErrorKindKey is the classifier error kind, see errors.Kind.
	ErrorKindKey = "error.kind"
)

// Standard values for OperationKey.
const (
	OperationDefineConfig = "define_config"
	OperationDefinePrep   = "define_prep_tasks"
	OperationLearn        = "learn"
	OperationReset        = "reset"
	OperationConsolidate  = "consolidate"
	OperationPredict      = "predict"
	OperationEvaluate     = "evaluate"
	OperationMetrics      = "metrics"
	OperationExport       = "export"
	OperationImport       = "import"
)
