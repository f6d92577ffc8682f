package model

import (
	"encoding/json"
	"time"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// EnvelopeVersion は現在のエンベロープ形式のバージョン
const EnvelopeVersion = "1"

// ModelEnvelope はモデルレジストリに保存される単位（シリアライゼーション用）
//
// Model にはモデル自身の ExportJSON 文書がそのまま入る。残りのフィールドは
// 一覧表示のための要約で、復元には使わない。
type ModelEnvelope struct {
	// ModelType はモデルの種類（NaiveBayes 等）
	ModelType string `json:"model_type"`

	// Version はエンベロープ形式のバージョン（互換性チェック用）
	Version string `json:"version"`

	// Config はモデル設定（ExportJSON 文書の先頭要素）
	Config json.RawMessage `json:"config,omitempty"`

	// Labels は学習済みラベル（出現順）
	Labels []string `json:"labels"`

	// Vocabulary は語彙数
	Vocabulary int `json:"vocabulary"`

	// Model は ExportJSON 文書
	Model json.RawMessage `json:"model"`

	// SavedAt は保存時刻
	SavedAt time.Time `json:"saved_at"`
}

// NewEnvelope は m を書き出してエンベロープに包む
func NewEnvelope(modelType string, m Persistable, labels []string, vocabulary int) (*ModelEnvelope, error) {
	doc, err := m.ExportJSON()
	if err != nil {
		return nil, errors.Wrap(err, "failed to export model")
	}
	return WrapDocument(modelType, doc, labels, vocabulary)
}

// WrapDocument は書き出し済みの文書をエンベロープに包む。
// labels と vocabulary は doc と同じ時点のものを渡すこと。
func WrapDocument(modelType string, doc []byte, labels []string, vocabulary int) (*ModelEnvelope, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(doc, &parts); err != nil {
		return nil, errors.Wrap(err, "exported model is not a JSON array")
	}
	var cfg json.RawMessage
	if len(parts) > 0 {
		cfg = parts[0]
	}

	return &ModelEnvelope{
		ModelType:  modelType,
		Version:    EnvelopeVersion,
		Config:     cfg,
		Labels:     append([]string(nil), labels...),
		Vocabulary: vocabulary,
		Model:      doc,
		SavedAt:    time.Now().UTC(),
	}, nil
}

// Restore はエンベロープの文書を m に読み込む
func (env *ModelEnvelope) Restore(m Persistable) error {
	if err := env.Validate(); err != nil {
		return err
	}
	return m.ImportJSON(env.Model)
}

// ToJSON はエンベロープをJSON形式にシリアライズ
func (env *ModelEnvelope) ToJSON() ([]byte, error) {
	return json.Marshal(env)
}

// FromJSON はJSON形式からエンベロープをデシリアライズ
func (env *ModelEnvelope) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, env); err != nil {
		return errors.Wrap(err, "failed to decode model envelope")
	}
	return nil
}

// Validate はエンベロープの妥当性を検証
func (env *ModelEnvelope) Validate() error {
	if env.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", env.ModelType)
	}
	if env.Version != EnvelopeVersion {
		return errors.NewValidationError("version", "unsupported envelope version", env.Version)
	}
	if len(env.Model) == 0 {
		return errors.NewValidationError("model", "is required", "")
	}
	return nil
}

// Clone はエンベロープのディープコピーを作成
func (env *ModelEnvelope) Clone() *ModelEnvelope {
	clone := *env
	clone.Config = append(json.RawMessage(nil), env.Config...)
	clone.Labels = append([]string(nil), env.Labels...)
	clone.Model = append(json.RawMessage(nil), env.Model...)
	return &clone
}
