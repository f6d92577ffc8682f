package naive_bayes

import (
	"github.com/YuminosukeSato/textnb/metrics"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// Evaluate predicts input and records the outcome against trueLabel in the
// confusion matrix. It returns false, without recording, when the prediction
// is UnknownLabel. A trueLabel never seen while learning is InvalidArgument.
func (c *TextClassifier) Evaluate(input any, trueLabel string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.samples[trueLabel] == 0 {
		return false, errors.NewInvalidArgumentError("Evaluate", "unknown label encountered: %q", trueLabel)
	}

	prediction, err := c.predict("Evaluate", input)
	if err != nil {
		return false, err
	}
	if prediction == UnknownLabel {
		return false, nil
	}

	if err := c.cm.Record(trueLabel, prediction); err != nil {
		return false, err
	}
	c.state.SetEvaluated()
	return true, nil
}

// Metrics computes macro averaged precision, recall and F-measure from the
// confusion matrix. It fails with InvalidState before any recorded evaluation.
func (c *TextClassifier) Metrics() (*metrics.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.state.RequireEvaluated("Metrics"); err != nil {
		return nil, err
	}

	report := metrics.Compute(c.cm)
	c.logger.Info("metrics computed",
		log.OperationKey, log.OperationMetrics,
		log.ExamplesKey, c.cm.Total(),
		"report", report,
	)
	return report, nil
}
