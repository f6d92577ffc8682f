// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// テキスト分類器の各操作が返すエラーは、機械的に判定できる種別（Kind）と
// 人間が読めるメッセージを持ちます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("textnb-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、あるラベルが一度も予測されず適合率の分母が0になった場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Label     string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	if w.Label != "" {
		return fmt.Sprintf("'%s' is ill-defined for label %q and being set to %g due to %s.", w.Metric, w.Label, w.Result, w.Condition)
	}
	return fmt.Sprintf("'%s' is ill-defined and being set to %g due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("label", w.Label).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, label, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Label: label, Condition: condition, Result: result}
}

// ===========================================================================
//
//	エラー種別
//
// ===========================================================================

// Kind は分類器の操作が失敗した理由の種別です。
type Kind int

const (
	// KindUnknown は分類器由来ではないエラーを表します。
	KindUnknown Kind = iota
	// KindInvalidArgument は不正な設定、前処理タスク、シリアライズ文書、未知の評価ラベルを表します。
	KindInvalidArgument
	// KindInvalidState はライフサイクル上許可されない操作を表します。
	KindInvalidState
	// KindInsufficientData は学習量が統合（consolidate）に足りないことを表します。
	KindInsufficientData
)

// String はKindの名前を返します。
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindInvalidState:
		return "InvalidState"
	case KindInsufficientData:
		return "InsufficientData"
	default:
		return "Unknown"
	}
}

var (
	// ErrInvalidArgument は KindInvalidArgument の番兵エラーです。
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState は KindInvalidState の番兵エラーです。
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientData は KindInsufficientData の番兵エラーです。
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = errors.New("empty data")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindInvalidState:
		return ErrInvalidState
	case KindInsufficientData:
		return ErrInsufficientData
	default:
		return nil
	}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ClassifierError は分類器の公開操作が前提条件違反で失敗した場合のエラーです。
// Unwrap は種別ごとの番兵エラーを返すので、errors.Is で種別を判定できます。
type ClassifierError struct {
	Op      string
	Kind    Kind
	Message string
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("textnb: %s: %s", e.Op, e.Message)
}

// Unwrap は種別の番兵エラーを返します。
func (e *ClassifierError) Unwrap() error {
	return e.Kind.sentinel()
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ClassifierError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("kind", e.Kind.String()).
		Str("message", e.Message).
		Str("type", "ClassifierError")
}

func newClassifierError(op string, kind Kind, format string, args ...interface{}) error {
	err := &ClassifierError{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
	return errors.WithStack(err)
}

// NewInvalidArgumentError は KindInvalidArgument のエラーをスタックトレース付きで作成します。
func NewInvalidArgumentError(op, format string, args ...interface{}) error {
	return newClassifierError(op, KindInvalidArgument, format, args...)
}

// NewInvalidStateError は KindInvalidState のエラーをスタックトレース付きで作成します。
func NewInvalidStateError(op, format string, args ...interface{}) error {
	return newClassifierError(op, KindInvalidState, format, args...)
}

// NewInsufficientDataError は KindInsufficientData のエラーをスタックトレース付きで作成します。
func NewInsufficientDataError(op, format string, args ...interface{}) error {
	return newClassifierError(op, KindInsufficientData, format, args...)
}

// KindOf はエラーチェーンから種別を取り出します。分類器由来でなければ KindUnknown です。
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	default:
		return KindUnknown
	}
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// 種別は常に KindInvalidArgument です。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("textnb: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// Unwrap は ErrInvalidArgument を返します。
func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
