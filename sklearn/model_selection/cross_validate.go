package model_selection

import (
	"context"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/metrics"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// FoldResult はひとつの分割の評価結果
type FoldResult struct {
	Fold      int `json:"fold"`
	TrainSize int `json:"trainSize"`
	TestSize  int `json:"testSize"`

	// Evaluated は混同行列に記録された件数、Skipped は unknown と予測された件数
	Evaluated int `json:"evaluated"`
	Skipped   int `json:"skipped"`

	// Accuracy は正解数 / Evaluated
	Accuracy float64         `json:"accuracy"`
	Report   *metrics.Report `json:"report,omitempty"`

	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// CVResult stores cross-validation results
type CVResult struct {
	Folds []FoldResult `json:"folds"`

	// 以下は成功した分割だけの平均と標準偏差
	Succeeded    int     `json:"succeeded"`
	MeanAccuracy float64 `json:"meanAccuracy"`
	StdAccuracy  float64 `json:"stdAccuracy"`
	MeanFMeasure float64 `json:"meanFMeasure"`
	StdFMeasure  float64 `json:"stdFMeasure"`
}

// Accuracies returns the accuracy of every successful fold, in fold order.
func (cv *CVResult) Accuracies() []float64 {
	var out []float64
	for _, f := range cv.Folds {
		if f.Err == nil {
			out = append(out, f.Accuracy)
		}
	}
	return out
}

// FMeasures returns the macro F-measure of every successful fold, in fold order.
func (cv *CVResult) FMeasures() []float64 {
	var out []float64
	for _, f := range cv.Folds {
		if f.Err == nil {
			out = append(out, f.Report.AvgFMeasure)
		}
	}
	return out
}

// CrossValidate runs one learn, consolidate, evaluate cycle per fold on clf.
// clf is Reset before every fold, so its configuration and prep pipeline carry
// over while learnings do not. A failing fold is recorded in its FoldResult and
// the remaining folds still run; an error is returned only when no fold
// succeeds or ctx is canceled.
func CrossValidate(ctx context.Context, clf model.TextClassifier, examples []model.Example, splitter Splitter) (*CVResult, error) {
	if len(examples) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "cross validation needs examples")
	}

	labels := make([]string, len(examples))
	for i, ex := range examples {
		labels[i] = ex.Label
	}
	folds := splitter.Split(labels)
	if len(folds) == 0 {
		return nil, errors.NewInsufficientDataError("CrossValidate", "splitter produced no folds")
	}

	logger := log.GetLoggerWithName("model_selection")
	result := &CVResult{Folds: make([]FoldResult, 0, len(folds))}

	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "cross validation canceled")
		}

		start := time.Now()
		fr := runFold(clf, examples, fold)
		fr.Fold = i
		fr.Duration = time.Since(start)
		result.Folds = append(result.Folds, fr)

		if fr.Err != nil {
			logger.Warn("fold failed", fr.Err, log.FoldKey, i)
			continue
		}
		logger.Debug("fold evaluated",
			log.FoldKey, i,
			log.AccuracyKey, fr.Accuracy,
			log.FMeasureKey, fr.Report.AvgFMeasure,
			log.DurationMsKey, fr.Duration.Milliseconds(),
		)
	}
	clf.Reset()

	accuracies := result.Accuracies()
	result.Succeeded = len(accuracies)
	if result.Succeeded == 0 {
		return result, errors.Wrap(result.Folds[0].Err, "every fold failed")
	}
	result.MeanAccuracy, result.StdAccuracy = meanStd(accuracies)
	result.MeanFMeasure, result.StdFMeasure = meanStd(result.FMeasures())
	return result, nil
}

func runFold(clf model.TextClassifier, examples []model.Example, fold Fold) FoldResult {
	fr := FoldResult{TrainSize: len(fold.TrainIndices), TestSize: len(fold.TestIndices)}

	clf.Reset()
	trained := make(map[string]struct{})
	for _, idx := range fold.TrainIndices {
		ex := examples[idx]
		if err := clf.Learn(ex.Input, ex.Label); err != nil {
			fr.Err = errors.Wrapf(err, "example %d", idx)
			return fr
		}
		trained[ex.Label] = struct{}{}
	}
	if err := clf.Consolidate(); err != nil {
		fr.Err = err
		return fr
	}

	for _, idx := range fold.TestIndices {
		ex := examples[idx]
		recorded, err := clf.Evaluate(ex.Input, ex.Label)
		if _, seen := trained[ex.Label]; !seen && errors.Is(err, errors.ErrInvalidArgument) {
			// 学習側に現れなかったラベルは評価できない
			fr.Skipped++
			continue
		}
		if err != nil {
			fr.Err = errors.Wrapf(err, "example %d", idx)
			return fr
		}
		if recorded {
			fr.Evaluated++
		} else {
			fr.Skipped++
		}
	}

	report, err := clf.Metrics()
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Report = report

	correct := 0
	for _, label := range report.Labels {
		correct += report.Details.ConfusionMatrix[label][label]
	}
	fr.Accuracy = metrics.Round4(errors.SafeDivide(float64(correct), float64(fr.Evaluated)))
	return fr
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) < 2 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
