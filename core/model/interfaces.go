package model

import (
	"github.com/YuminosukeSato/textnb/metrics"
)

// Example は学習・評価に使う (入力, ラベル) の組
type Example struct {
	// Input は前処理パイプラインに渡される生の入力（文字列やトークン列など）
	Input any `json:"input"`
	// Label はクラスラベル
	Label string `json:"label"`
}

// LabelOdds はラベルとそのオッズ（対数オッズ）の組
type LabelOdds struct {
	Label string  `json:"label"`
	Odds  float64 `json:"odds"`
}

// Learner は逐次学習可能なモデルのインターフェース
type Learner interface {
	// Learn は1件の例を学習する
	Learn(input any, label string) error
}

// Consolidator は学習内容を確定させるモデルのインターフェース
type Consolidator interface {
	Consolidate() error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は最もオッズの高いラベルを返す
	Predict(input any) (string, error)
}

// OddsScorer はラベルごとのオッズを返すモデルのインターフェース
type OddsScorer interface {
	ComputeOdds(input any) ([]LabelOdds, error)
}

// Evaluator は保持データで評価を行うモデルのインターフェース
type Evaluator interface {
	// Evaluate は1件を評価し、混同行列に記録したかを返す（予測が unknown なら記録しない）
	Evaluate(input any, trueLabel string) (bool, error)
	// Metrics は評価結果から指標を計算する
	Metrics() (*metrics.Report, error)
}

// Resetter は学習状態を初期化できるモデルのインターフェース
type Resetter interface {
	Reset()
}

// Persistable は JSON 文書として書き出し・読み込みできるモデルのインターフェース
type Persistable interface {
	ExportJSON() ([]byte, error)
	ImportJSON(doc []byte) error
}

// TextClassifier は交差検証などのドライバが必要とする操作をまとめたもの
type TextClassifier interface {
	Learner
	Consolidator
	Predictor
	OddsScorer
	Evaluator
	Resetter
	Persistable
}
