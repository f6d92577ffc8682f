// Package textnb provides a Naive Bayes text classifier for Go, designed for
// backend services that need small, explainable intent or topic models.
//
// A classifier learns (text, label) examples one at a time, is consolidated,
// and then predicts the most likely label of new text together with per-label
// log odds. Held-out examples can be evaluated into a confusion matrix from
// which macro averaged precision, recall and F-measure are computed.
//
// # Features
//
//   - Multinomial or presence-only counting with additive smoothing
//   - Pluggable prep pipeline (lowercase, sanitize, tokenize, stop words, negation)
//   - Explicit lifecycle: learn → consolidate → predict/evaluate → metrics
//   - Order preserving JSON export/import of the learnings
//   - K-fold and stratified cross-validation
//   - bbolt backed model registry and a cobra CLI
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/textnb/preprocessing"
//	    "github.com/YuminosukeSato/textnb/sklearn/naive_bayes"
//	)
//
//	func main() {
//	    clf, err := naive_bayes.NewTextClassifier(
//	        naive_bayes.WithPrepTasks(preprocessing.DefaultPipeline()...),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    _ = clf.Learn("i want to prepay my loan", "prepay")
//	    _ = clf.Learn("i need loan for a new car", "autoloan")
//	    // ... more examples
//
//	    if err := clf.Consolidate(); err != nil {
//	        log.Fatal(err)
//	    }
//	    label, err := clf.Predict("I need a loan")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(label)
//	}
//
// # Packages
//
//   - sklearn/naive_bayes: the classifier
//   - sklearn/model_selection: KFold, StratifiedKFold, CrossValidate
//   - preprocessing: prep tasks and named pipelines
//   - metrics: confusion matrix and classification report
//   - core/model: interfaces, lifecycle state, persistence, model envelopes
//   - core/parallel: parallel batch helpers
//   - pkg/errors, pkg/log: error kinds and structured logging
//   - cmd/textnb: command line interface
//
// # Concurrency
//
// A TextClassifier guards its state with a read/write mutex. Prediction,
// odds, statistics, metrics and export may run concurrently; learning,
// consolidation, evaluation, reset and import are serialized. PredictBatch
// spreads large batches across CPU cores.
package textnb
