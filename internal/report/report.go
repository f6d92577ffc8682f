// Package report draws evaluation charts with gonum/plot. The image format
// follows the file extension (.png, .svg, .pdf, ...).
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/textnb/metrics"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/sklearn/model_selection"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
	barW   = vg.Length(14)
)

// series is one group member of a grouped bar chart.
type series struct {
	name   string
	values plotter.Values
}

// PlotLabelMetrics draws precision, recall and F-measure per label.
func PlotLabelMetrics(r *metrics.Report, path string) error {
	if r == nil || len(r.Labels) == 0 {
		return errors.NewInvalidArgumentError("PlotLabelMetrics", "report has no labels")
	}

	p := make(plotter.Values, len(r.Labels))
	rc := make(plotter.Values, len(r.Labels))
	f := make(plotter.Values, len(r.Labels))
	for i, label := range r.Labels {
		p[i] = r.Details.Precision[label]
		rc[i] = r.Details.Recall[label]
		f[i] = r.Details.FMeasure[label]
	}

	title := fmt.Sprintf("Per-label metrics (avg F %.4f)", r.AvgFMeasure)
	return grouped(title, "score", r.Labels, []series{
		{"precision", p},
		{"recall", rc},
		{"f-measure", f},
	}, path)
}

// PlotFolds draws accuracy and macro F-measure of every successful fold.
func PlotFolds(cv *model_selection.CVResult, path string) error {
	if cv == nil || cv.Succeeded == 0 {
		return errors.NewInvalidArgumentError("PlotFolds", "no successful folds to plot")
	}

	var names []string
	var acc, f plotter.Values
	for _, fold := range cv.Folds {
		if fold.Err != nil {
			continue
		}
		names = append(names, fmt.Sprintf("fold %d", fold.Fold))
		acc = append(acc, fold.Accuracy)
		f = append(f, fold.Report.AvgFMeasure)
	}

	title := fmt.Sprintf("Cross-validation (accuracy %.4f ± %.4f)", cv.MeanAccuracy, cv.StdAccuracy)
	return grouped(title, "score", names, []series{
		{"accuracy", acc},
		{"f-measure", f},
	}, path)
}

func grouped(title, yLabel string, groups []string, ss []series, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = true

	// 中央のバーがグループ名の位置に来るようにずらす
	offset := -barW * vg.Length(len(ss)-1) / 2
	for i, s := range ss {
		bars, err := plotter.NewBarChart(s.values, barW)
		if err != nil {
			return errors.Wrapf(err, "bar chart %s", s.name)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = offset + barW*vg.Length(i)
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}
	p.NominalX(groups...)

	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
