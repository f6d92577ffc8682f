package model

import (
	"bytes"
	"io"
	"os"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// SaveModel はモデルを JSON 文書としてファイルに保存する
//
// 使用例:
//
//	err := model.SaveModel(clf, "loans.json")
func SaveModel(m Persistable, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := SaveModelToWriter(m, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "failed to close file")
}

// LoadModel はファイルから JSON 文書を読み込みモデルに復元する
//
// 復元後は予測の前に Consolidate() を呼ぶ必要がある。
func LoadModel(m Persistable, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadModelFromReader(m, file)
}

// SaveModelToWriter はモデルを io.Writer に書き出す
func SaveModelToWriter(m Persistable, w io.Writer) error {
	doc, err := m.ExportJSON()
	if err != nil {
		return errors.Wrap(err, "failed to export model")
	}
	if _, err := io.Copy(w, bytes.NewReader(doc)); err != nil {
		return errors.Wrap(err, "failed to write model")
	}
	return nil
}

// LoadModelFromReader は io.Reader から JSON 文書を読み込む
func LoadModelFromReader(m Persistable, r io.Reader) error {
	doc, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read model")
	}
	return m.ImportJSON(doc)
}
