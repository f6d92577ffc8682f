package naive_bayes

import (
	"sync"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/metrics"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// LabelOdds は (ラベル, オッズ) の組
type LabelOdds = model.LabelOdds

// Stats は学習の基本統計
type Stats struct {
	// LabelWiseSamples はラベルごとの学習例数
	LabelWiseSamples map[string]int `json:"labelWiseSamples"`
	// LabelWiseWords はラベルごとのトークン総数（重複も数える）
	LabelWiseWords map[string]int `json:"labelWiseWords"`
	// Vocabulary は語彙数
	Vocabulary int `json:"vocabulary"`
}

// TextClassifier is a Naive Bayes text classifier.
//
// The lifecycle is learn → consolidate → predict/evaluate → metrics. Reset and
// ImportJSON return to the start. All methods are safe for concurrent use;
// read-only calls run in parallel with each other.
type TextClassifier struct {
	mu    sync.RWMutex
	state *model.StateManager

	settings          settings
	prep              []PrepTask
	logger            log.Logger
	parallelThreshold int

	// learning store
	vocab      map[string]struct{}
	vocabOrder []string
	samples    map[string]int
	words      map[string]int
	count      map[string]map[string]int
	labelOrder []string

	// frozen at consolidation
	labels       []string
	totalSamples int

	// evaluation store
	cm *metrics.ConfusionMatrix

	pendingConfig *Config
	pendingPrep   []PrepTask
}

// Option は TextClassifier の設定オプション
type Option func(*TextClassifier)

// WithConfig sets the learning configuration, see DefineConfig.
func WithConfig(cfg Config) Option {
	return func(c *TextClassifier) {
		c.pendingConfig = &cfg
	}
}

// WithPrepTasks sets the prep pipeline, see DefinePrepTasks.
func WithPrepTasks(tasks ...PrepTask) Option {
	return func(c *TextClassifier) {
		c.pendingPrep = tasks
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger log.Logger) Option {
	return func(c *TextClassifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParallelThreshold sets the batch size above which PredictBatch fans out
// across CPU cores.
func WithParallelThreshold(n int) Option {
	return func(c *TextClassifier) {
		c.parallelThreshold = n
	}
}

// NewTextClassifier は新しい分類器を作成する
func NewTextClassifier(opts ...Option) (*TextClassifier, error) {
	c := &TextClassifier{
		state:             model.NewStateManager(),
		settings:          defaultSettings(),
		logger:            log.GetLoggerWithName("naive_bayes"),
		parallelThreshold: 64,
	}
	c.resetStores()

	for _, opt := range opts {
		opt(c)
	}

	if c.pendingConfig != nil {
		if err := c.DefineConfig(*c.pendingConfig); err != nil {
			return nil, err
		}
	}
	if c.pendingPrep != nil {
		if _, err := c.DefinePrepTasks(c.pendingPrep...); err != nil {
			return nil, err
		}
	}
	c.pendingConfig, c.pendingPrep = nil, nil
	return c, nil
}

func (c *TextClassifier) resetStores() {
	c.vocab = make(map[string]struct{})
	c.vocabOrder = nil
	c.samples = make(map[string]int)
	c.words = make(map[string]int)
	c.count = make(map[string]map[string]int)
	c.labelOrder = nil
	c.labels = nil
	c.totalSamples = 0
	c.cm = nil
}

// DefineConfig sets the learning configuration. It fails with InvalidState
// once learning has started and with InvalidArgument for a non-finite
// smoothing factor.
func (c *TextClassifier) DefineConfig(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.RequireNotLearned("DefineConfig"); err != nil {
		return err
	}
	s, err := cfg.normalize()
	if err != nil {
		return err
	}
	c.settings = s
	c.logger.Debug("config defined",
		log.OperationKey, log.OperationDefineConfig,
		log.PresenceKey, s.presence,
		log.SmoothingKey, s.smoothing,
	)
	return nil
}

// Config returns the effective configuration.
func (c *TextClassifier) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.config()
}

// DefinePrepTasks replaces the prep pipeline and returns the number of stages.
// A nil task is InvalidArgument; the previous pipeline is then kept.
func (c *TextClassifier) DefinePrepTasks(tasks ...PrepTask) (int, error) {
	if err := validateTasks("DefinePrepTasks", tasks); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prep = append([]PrepTask(nil), tasks...)
	c.logger.Debug("prep tasks defined", log.OperationKey, log.OperationDefinePrep, "stages", len(c.prep))
	return len(c.prep), nil
}

// Learn learns one (input, label) example. It fails with InvalidState after
// consolidation. A failing prep pipeline leaves the learnings untouched.
func (c *TextClassifier) Learn(input any, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.learn(input, label)
}

// LearnBatch learns examples in order and stops at the first failure.
// Examples before the failing one stay learned.
func (c *TextClassifier) LearnBatch(examples []model.Example) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, ex := range examples {
		if err := c.learn(ex.Input, ex.Label); err != nil {
			return errors.Wrapf(err, "example %d", i)
		}
	}
	c.logger.Debug("batch learned", log.OperationKey, log.OperationLearn, log.ExamplesKey, len(examples))
	return nil
}

func (c *TextClassifier) learn(input any, label string) error {
	if err := c.state.RequireNotConsolidated("Learn"); err != nil {
		return err
	}
	if label == "" {
		return errors.NewInvalidArgumentError("Learn", "label must not be empty")
	}
	if label == UnknownLabel {
		return errors.NewInvalidArgumentError("Learn", "label %q is reserved", UnknownLabel)
	}

	tokens, err := runPipeline("Learn", c.prep, input)
	if err != nil {
		return err
	}
	if c.settings.presence {
		tokens = uniqueTokens(tokens)
	}

	counts, seen := c.count[label]
	if !seen {
		counts = make(map[string]int)
		c.count[label] = counts
		c.labelOrder = append(c.labelOrder, label)
	}
	c.samples[label]++
	for _, token := range tokens {
		counts[token]++
		c.words[label]++
		if _, ok := c.vocab[token]; !ok {
			c.vocab[token] = struct{}{}
			c.vocabOrder = append(c.vocabOrder, token)
		}
	}
	if _, ok := c.words[label]; !ok {
		c.words[label] = 0
	}

	c.state.SetLearned()
	return nil
}

// Reset clears learning and evaluation state and the lifecycle flags.
// The prep pipeline and the configuration are kept.
func (c *TextClassifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.logger.Debug("classifier reset", log.OperationKey, log.OperationReset)
}

func (c *TextClassifier) reset() {
	c.resetStores()
	c.state.Reset()
}

// Consolidate freezes labels and vocabulary and prepares an empty confusion
// matrix. It fails with InsufficientData for fewer than MinLabels labels or a
// vocabulary smaller than MinVocabulary. Calling it again is harmless.
func (c *TextClassifier) Consolidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.labelOrder) < MinLabels {
		return errors.NewInsufficientDataError("Consolidate",
			"classification requires %d or more labels, found %d", MinLabels, len(c.labelOrder))
	}
	if len(c.vocabOrder) < MinVocabulary {
		return errors.NewInsufficientDataError("Consolidate",
			"vocabulary is too small to learn meaningful classification: %d < %d", len(c.vocabOrder), MinVocabulary)
	}

	labels := append([]string(nil), c.labelOrder...)
	cm, err := metrics.NewConfusionMatrix(labels)
	if err != nil {
		return err
	}

	total := 0
	for _, l := range labels {
		total += c.samples[l]
	}

	c.labels = labels
	c.totalSamples = total
	c.cm = cm
	c.state.SetConsolidated()

	c.logger.Info("learnings consolidated",
		log.OperationKey, log.OperationConsolidate,
		log.LabelsKey, len(labels),
		log.VocabularyKey, len(c.vocabOrder),
		log.ExamplesKey, total,
	)
	return nil
}

// Stats returns per-label sample and word totals and the vocabulary size.
func (c *TextClassifier) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Stats{
		LabelWiseSamples: make(map[string]int, len(c.samples)),
		LabelWiseWords:   make(map[string]int, len(c.words)),
		Vocabulary:       len(c.vocabOrder),
	}
	for l, n := range c.samples {
		st.LabelWiseSamples[l] = n
	}
	for l, n := range c.words {
		st.LabelWiseWords[l] = n
	}
	return st
}

// Labels returns the learned labels in first-encounter order.
func (c *TextClassifier) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.labelOrder...)
}

// State returns the lifecycle flags.
func (c *TextClassifier) State() model.ModelState {
	return c.state.GetState()
}

// Envelope wraps the exported learnings for the model registry. The summary
// fields and the document come from one snapshot.
func (c *TextClassifier) Envelope() (*model.ModelEnvelope, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, err := c.exportJSON()
	if err != nil {
		return nil, errors.Wrap(err, "failed to export model")
	}
	return model.WrapDocument(ModelType, doc, c.labelOrder, len(c.vocabOrder))
}

var _ model.TextClassifier = (*TextClassifier)(nil)
