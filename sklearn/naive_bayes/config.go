package naive_bayes

import (
	"math"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

const (
	// DefaultSmoothingFactor is used when Config.SmoothingFactor is nil.
	DefaultSmoothingFactor = 1.0

	// MinVocabulary is the smallest vocabulary Consolidate accepts.
	MinVocabulary = 10

	// MinLabels is the smallest number of distinct labels Consolidate accepts.
	MinLabels = 2

	// UnknownLabel is reported when no input token is in the vocabulary.
	UnknownLabel = "unknown"

	// ModelType names this classifier in model envelopes.
	ModelType = "NaiveBayes"
)

// Config holds the two learning parameters. It can not change once learning
// has started.
type Config struct {
	// ConsiderOnlyPresence counts a token at most once per example.
	ConsiderOnlyPresence bool `json:"considerOnlyPresence" yaml:"considerOnlyPresence"`

	// SmoothingFactor is the additive smoothing in [0,1]; nil means DefaultSmoothingFactor.
	// Finite values outside the range are clamped.
	SmoothingFactor *float64 `json:"smoothingFactor,omitempty" yaml:"smoothingFactor,omitempty"`
}

// Smoothing returns a pointer to s, for use in Config literals.
func Smoothing(s float64) *float64 {
	return &s
}

// settings is the validated form of Config.
type settings struct {
	presence  bool
	smoothing float64
}

func defaultSettings() settings {
	return settings{smoothing: DefaultSmoothingFactor}
}

func (s settings) config() Config {
	return Config{ConsiderOnlyPresence: s.presence, SmoothingFactor: Smoothing(s.smoothing)}
}

// Validate reports whether DefineConfig would accept cfg.
func (cfg Config) Validate() error {
	_, err := cfg.normalize()
	return err
}

// normalize validates cfg. NaN and infinities are rejected.
func (cfg Config) normalize() (settings, error) {
	s := settings{presence: cfg.ConsiderOnlyPresence, smoothing: DefaultSmoothingFactor}
	if cfg.SmoothingFactor == nil {
		return s, nil
	}
	v := *cfg.SmoothingFactor
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s, errors.NewValidationError("smoothingFactor", "must be a finite number", v)
	}
	s.smoothing = errors.ClipValue(v, 0, 1)
	return s, nil
}
