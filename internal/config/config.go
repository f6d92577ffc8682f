// Package config loads the YAML configuration of the textnb command.
package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
	"github.com/YuminosukeSato/textnb/preprocessing"
	"github.com/YuminosukeSato/textnb/sklearn/naive_bayes"
)

// File is the on-disk configuration. Zero values are filled by Default.
//
//	classifier:
//	  considerOnlyPresence: true
//	  smoothingFactor: 0.5
//	prep: [lowercase, sanitize, tokenize, stopwords]
//	store: models.db
//	cv:
//	  folds: 5
//	  stratified: true
//	  shuffle: true
//	  seed: 42
//	log:
//	  level: info
//	  format: console
type File struct {
	Classifier naive_bayes.Config `yaml:"classifier"`
	Prep       []string           `yaml:"prep"`
	Store      string             `yaml:"store"`
	CV         CV                 `yaml:"cv"`
	Log        Log                `yaml:"log"`
}

// CV configures the cv command.
type CV struct {
	Folds      int    `yaml:"folds"`
	Stratified bool   `yaml:"stratified"`
	Shuffle    bool   `yaml:"shuffle"`
	Seed       uint64 `yaml:"seed"`
}

// Log configures SetupLogger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Prep:  []string{"lowercase", "sanitize", "tokenize"},
		Store: "textnb.db",
		CV:    CV{Folds: 5, Stratified: true},
		Log:   Log{Level: "warn", Format: "json"},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.NewInvalidArgumentError("config", "parse yaml: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that can be checked without touching data.
func (f *File) Validate() error {
	if err := f.Classifier.Validate(); err != nil {
		return err
	}
	if len(f.Prep) == 0 {
		return errors.NewValidationError("prep", "at least one prep task is required", f.Prep)
	}
	if _, err := preprocessing.Pipeline(f.Prep); err != nil {
		return err
	}
	if f.CV.Folds < 2 {
		return errors.NewValidationError("cv.folds", "must be 2 or more", f.CV.Folds)
	}
	if _, err := log.ParseLevel(f.Log.Level); err != nil {
		return err
	}
	if f.Log.Format != "json" && f.Log.Format != "console" {
		return errors.NewValidationError("log.format", "must be json or console", f.Log.Format)
	}
	return nil
}

// Options converts the classifier part of f into classifier options.
func (f *File) Options() ([]naive_bayes.Option, error) {
	prep, err := preprocessing.Pipeline(f.Prep)
	if err != nil {
		return nil, err
	}
	return []naive_bayes.Option{
		naive_bayes.WithConfig(f.Classifier),
		naive_bayes.WithPrepTasks(prep...),
	}, nil
}
