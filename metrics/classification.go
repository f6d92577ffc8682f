// Package metrics は分類器の評価指標（混同行列、適合率、再現率、F値）を提供する
package metrics

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// ConfusionMatrix はラベル×ラベルの混同行列
//
// 一致した場合は cm[正解][予測]、不一致の場合は cm[予測][正解] を加算する。
// 行和が適合率の分母、列和が再現率の分母になる。
type ConfusionMatrix struct {
	labels []string
	index  map[string]int
	cells  *mat.Dense
}

// NewConfusionMatrix はすべて0の混同行列を作成する
func NewConfusionMatrix(labels []string) (*ConfusionMatrix, error) {
	// 入力検証
	if len(labels) == 0 {
		return nil, errors.NewInvalidArgumentError("NewConfusionMatrix", "at least one label is required")
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			return nil, errors.NewInvalidArgumentError("NewConfusionMatrix", "duplicate label %q", l)
		}
		index[l] = i
	}

	k := len(labels)
	return &ConfusionMatrix{
		labels: append([]string(nil), labels...),
		index:  index,
		cells:  mat.NewDense(k, k, nil),
	}, nil
}

// Labels はラベルを行・列の順に返す
func (cm *ConfusionMatrix) Labels() []string {
	return append([]string(nil), cm.labels...)
}

// Record は1件の評価結果を記録する
func (cm *ConfusionMatrix) Record(trueLabel, predicted string) error {
	t, ok := cm.index[trueLabel]
	if !ok {
		return errors.NewInvalidArgumentError("Record", "unknown true label %q", trueLabel)
	}
	p, ok := cm.index[predicted]
	if !ok {
		return errors.NewInvalidArgumentError("Record", "unknown predicted label %q", predicted)
	}

	row, col := t, p
	if t != p {
		row, col = p, t
	}
	cm.cells.Set(row, col, cm.cells.At(row, col)+1)
	return nil
}

// At は cm[row][col] を返す。未知のラベルは0。
func (cm *ConfusionMatrix) At(row, col string) int {
	r, ok := cm.index[row]
	if !ok {
		return 0
	}
	c, ok := cm.index[col]
	if !ok {
		return 0
	}
	return int(cm.cells.At(r, c))
}

// Total は記録された件数
func (cm *ConfusionMatrix) Total() int {
	return int(mat.Sum(cm.cells))
}

// Correct は対角成分の和
func (cm *ConfusionMatrix) Correct() int {
	return int(mat.Trace(cm.cells))
}

// Reset はすべてのセルを0に戻す
func (cm *ConfusionMatrix) Reset() {
	cm.cells.Zero()
}

// Grid は混同行列を入れ子のマップとして返す
func (cm *ConfusionMatrix) Grid() map[string]map[string]int {
	grid := make(map[string]map[string]int, len(cm.labels))
	for i, row := range cm.labels {
		grid[row] = make(map[string]int, len(cm.labels))
		for j, col := range cm.labels {
			grid[row][col] = int(cm.cells.At(i, j))
		}
	}
	return grid
}

// Details はラベルごとの内訳
type Details struct {
	ConfusionMatrix map[string]map[string]int `json:"confusionMatrix"`
	Precision       map[string]float64        `json:"precision"`
	Recall          map[string]float64        `json:"recall"`
	FMeasure        map[string]float64        `json:"fmeasure"`
}

// Report はマクロ平均の指標と内訳
type Report struct {
	AvgPrecision float64 `json:"avgPrecision"`
	AvgRecall    float64 `json:"avgRecall"`
	AvgFMeasure  float64 `json:"avgFMeasure"`
	Details      Details `json:"details"`

	// Labels は Details のキーを混同行列の順に並べたもの
	Labels []string `json:"labels"`
}

// MarshalZerologObject はzerologのイベントに要約を追加する
func (r *Report) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("avg_precision", r.AvgPrecision).
		Float64("avg_recall", r.AvgRecall).
		Float64("avg_f_measure", r.AvgFMeasure).
		Int("labels", len(r.Labels))
}

// Compute は混同行列から指標を計算する
//
// ラベルLについて n=cm[L][L]、適合率の分母は行和、再現率の分母は列和。
// 分母が0の指標は0とし、UndefinedMetricWarning を発生させる。
// F値は丸めた適合率と再現率から計算し、すべての値を小数4桁に丸める。
func Compute(cm *ConfusionMatrix) *Report {
	k := len(cm.labels)
	precision := make([]float64, k)
	recall := make([]float64, k)
	fmeasure := make([]float64, k)

	details := Details{
		ConfusionMatrix: cm.Grid(),
		Precision:       make(map[string]float64, k),
		Recall:          make(map[string]float64, k),
		FMeasure:        make(map[string]float64, k),
	}

	for i, label := range cm.labels {
		n := cm.cells.At(i, i)
		pd := mat.Sum(cm.cells.RowView(i))
		rd := mat.Sum(cm.cells.ColView(i))

		if pd == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("precision", label, "no predicted samples", 0))
		}
		if rd == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall", label, "no true samples", 0))
		}

		p := Round4(errors.SafeDivide(n, pd))
		r := Round4(errors.SafeDivide(n, rd))
		f := Round4(errors.SafeDivide(2*p*r, p+r))

		precision[i], recall[i], fmeasure[i] = p, r, f
		details.Precision[label] = p
		details.Recall[label] = r
		details.FMeasure[label] = f
	}

	return &Report{
		AvgPrecision: Round4(floats.Sum(precision) / float64(k)),
		AvgRecall:    Round4(floats.Sum(recall) / float64(k)),
		AvgFMeasure:  Round4(floats.Sum(fmeasure) / float64(k)),
		Details:      details,
		Labels:       cm.Labels(),
	}
}

// Round4 は小数4桁に丸める。NaN は0になる。
func Round4(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Round(x*1e4) / 1e4
}
