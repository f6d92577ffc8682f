package naive_bayes

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

var loanExamples = []model.Example{
	{Input: "i want to prepay my loan", Label: "prepay"},
	{Input: "i want to close my loan", Label: "prepay"},
	{Input: "i want to foreclose my loan", Label: "prepay"},
	{Input: "i would like to pay the loan balance", Label: "prepay"},
	{Input: "i would like to borrow money to buy a vehice", Label: "autoloan"},
	{Input: "i need loan for car", Label: "autoloan"},
	{Input: "i need loan for a new vehicle", Label: "autoloan"},
	{Input: "i need loan for a new mobike", Label: "autoloan"},
	{Input: "i need money for a new car", Label: "autoloan"},
}

var whitespace = TokenizeTask(strings.Fields)

func newLoanClassifier(t *testing.T, opts ...Option) *TextClassifier {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	opts = append([]Option{WithPrepTasks(whitespace), WithLogger(logger)}, opts...)
	c, err := NewTextClassifier(opts...)
	require.NoError(t, err)
	require.NoError(t, c.LearnBatch(loanExamples))
	return c
}

func consolidated(t *testing.T, opts ...Option) *TextClassifier {
	t.Helper()
	c := newLoanClassifier(t, opts...)
	require.NoError(t, c.Consolidate())
	return c
}

func TestNewTextClassifierDefaults(t *testing.T) {
	c, err := NewTextClassifier()
	require.NoError(t, err)

	cfg := c.Config()
	assert.False(t, cfg.ConsiderOnlyPresence)
	require.NotNil(t, cfg.SmoothingFactor)
	assert.Equal(t, DefaultSmoothingFactor, *cfg.SmoothingFactor)
	assert.Equal(t, model.PhaseFresh.String(), c.State().Phase)
	assert.Equal(t, Stats{LabelWiseSamples: map[string]int{}, LabelWiseWords: map[string]int{}}, c.Stats())
}

func TestNewTextClassifierRejectsBadOptions(t *testing.T) {
	_, err := NewTextClassifier(WithConfig(Config{SmoothingFactor: Smoothing(math.NaN())}))
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = NewTextClassifier(WithPrepTasks(whitespace, nil))
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestDefineConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    float64
		wantErr bool
	}{
		{name: "absent smoothing defaults to 1", cfg: Config{}, want: 1},
		{name: "in range", cfg: Config{SmoothingFactor: Smoothing(0.5)}, want: 0.5},
		{name: "zero", cfg: Config{SmoothingFactor: Smoothing(0)}, want: 0},
		{name: "above range clamps", cfg: Config{SmoothingFactor: Smoothing(3)}, want: 1},
		{name: "below range clamps", cfg: Config{SmoothingFactor: Smoothing(-2)}, want: 0},
		{name: "NaN", cfg: Config{SmoothingFactor: Smoothing(math.NaN())}, wantErr: true},
		{name: "infinity", cfg: Config{SmoothingFactor: Smoothing(math.Inf(-1))}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewTextClassifier()
			require.NoError(t, err)

			err = c.DefineConfig(tt.cfg)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
				assert.Equal(t, DefaultSmoothingFactor, *c.Config().SmoothingFactor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *c.Config().SmoothingFactor)
		})
	}
}

func TestDefineConfigAfterLearningFails(t *testing.T) {
	c := newLoanClassifier(t)

	err := c.DefineConfig(Config{ConsiderOnlyPresence: true})
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	assert.False(t, c.Config().ConsiderOnlyPresence)
}

func TestDefinePrepTasks(t *testing.T) {
	c, err := NewTextClassifier()
	require.NoError(t, err)

	n, err := c.DefinePrepTasks(StringTask(strings.ToLower), whitespace)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = c.DefinePrepTasks(whitespace, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	n, err = c.DefinePrepTasks()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLearnWithoutPrepTasksAcceptsTokens(t *testing.T) {
	c, err := NewTextClassifier()
	require.NoError(t, err)

	require.NoError(t, c.Learn([]string{"a", "b", "a"}, "x"))

	err = c.Learn("a b", "x")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	assert.Equal(t, 1, c.Stats().LabelWiseSamples["x"])
}

func TestLearnIsAtomicOnPrepFailure(t *testing.T) {
	boom := func(any) (any, error) { return nil, fmt.Errorf("boom") }
	panicky := func(any) (any, error) { panic("tokenizer exploded") }
	wrongType := func(any) (any, error) { return 42, nil }

	for name, task := range map[string]PrepTask{"error": boom, "panic": panicky, "wrong type": wrongType} {
		t.Run(name, func(t *testing.T) {
			c, err := NewTextClassifier(WithPrepTasks(task))
			require.NoError(t, err)

			err = c.Learn("i need loan for car", "autoloan")
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "%v", err)
			assert.Equal(t, 0, c.Stats().Vocabulary)
			assert.Empty(t, c.Labels())
			assert.False(t, c.State().Learned)

			// config is still open because nothing was learned
			assert.NoError(t, c.DefineConfig(Config{ConsiderOnlyPresence: true}))
		})
	}
}

func TestLearnRejectsReservedLabels(t *testing.T) {
	c, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)

	assert.True(t, errors.Is(c.Learn("x y", ""), errors.ErrInvalidArgument))
	assert.True(t, errors.Is(c.Learn("x y", UnknownLabel), errors.ErrInvalidArgument))
	assert.False(t, c.State().Learned)
}

func TestLearnBatchReportsFailingIndex(t *testing.T) {
	c, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)

	err = c.LearnBatch([]model.Example{
		{Input: "i need loan for car", Label: "autoloan"},
		{Input: 7, Label: "autoloan"},
		{Input: "never learned", Label: "prepay"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "example 1")
	assert.Equal(t, map[string]int{"autoloan": 1}, c.Stats().LabelWiseSamples)
}

func TestStatsOfLoanScenario(t *testing.T) {
	c := newLoanClassifier(t)

	assert.Equal(t, Stats{
		LabelWiseSamples: map[string]int{"autoloan": 5, "prepay": 4},
		LabelWiseWords:   map[string]int{"autoloan": 36, "prepay": 26},
		Vocabulary:       24,
	}, c.Stats())
	assert.Equal(t, []string{"prepay", "autoloan"}, c.Labels())
}

func TestPresenceModeCountsTokensOnce(t *testing.T) {
	c, err := NewTextClassifier(WithPrepTasks(whitespace), WithConfig(Config{ConsiderOnlyPresence: true}))
	require.NoError(t, err)

	require.NoError(t, c.Learn("new car new car new", "autoloan"))
	assert.Equal(t, 2, c.Stats().LabelWiseWords["autoloan"])

	c2 := newLoanClassifier(t, WithConfig(Config{ConsiderOnlyPresence: true}))
	// "i need money for a new car" has no repeats, "... to borrow money to buy ..." repeats "to"
	assert.Equal(t, 35, c2.Stats().LabelWiseWords["autoloan"])
}

func TestConsolidate(t *testing.T) {
	t.Run("needs two labels", func(t *testing.T) {
		c, err := NewTextClassifier(WithPrepTasks(whitespace))
		require.NoError(t, err)
		require.NoError(t, c.Learn("a b c d e f g h i j k l", "only"))

		err = c.Consolidate()
		assert.True(t, errors.Is(err, errors.ErrInsufficientData))
		assert.False(t, c.State().Consolidated)
	})

	t.Run("needs ten tokens", func(t *testing.T) {
		c, err := NewTextClassifier(WithPrepTasks(whitespace))
		require.NoError(t, err)
		require.NoError(t, c.Learn("a b c", "x"))
		require.NoError(t, c.Learn("d e f", "y"))
		require.NoError(t, c.Learn("g h i", "z"))

		err = c.Consolidate()
		assert.True(t, errors.Is(err, errors.ErrInsufficientData))
	})

	t.Run("fresh classifier", func(t *testing.T) {
		c, err := NewTextClassifier()
		require.NoError(t, err)
		assert.True(t, errors.Is(c.Consolidate(), errors.ErrInsufficientData))
	})

	t.Run("blocks learning and is idempotent", func(t *testing.T) {
		c := consolidated(t)

		err := c.Learn("i need loan", "autoloan")
		assert.True(t, errors.Is(err, errors.ErrInvalidState))

		require.NoError(t, c.Consolidate())
		assert.Equal(t, []string{"prepay", "autoloan"}, c.Labels())
		assert.Equal(t, 0, c.cm.Total())
	})
}

func TestResetKeepsPrepAndConfig(t *testing.T) {
	c := consolidated(t, WithConfig(Config{SmoothingFactor: Smoothing(0.5)}))

	c.Reset()

	assert.Equal(t, model.PhaseFresh.String(), c.State().Phase)
	assert.Equal(t, 0, c.Stats().Vocabulary)
	assert.Equal(t, 0.5, *c.Config().SmoothingFactor)

	_, err := c.Predict("i need loan")
	assert.True(t, errors.Is(err, errors.ErrInvalidState))

	// the same pipeline can learn again
	require.NoError(t, c.LearnBatch(loanExamples))
	require.NoError(t, c.Consolidate())
	label, err := c.Predict("i need a loan")
	require.NoError(t, err)
	assert.Equal(t, "autoloan", label)
}

func TestClassifierLogsConsolidation(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	c, err := NewTextClassifier(WithPrepTasks(whitespace), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, c.LearnBatch(loanExamples))
	require.NoError(t, c.Consolidate())

	assert.True(t, logger.ContainsMessage("learnings consolidated"))
	assert.True(t, logger.ContainsField(log.VocabularyKey, 24.0))
	assert.True(t, logger.ContainsField(log.LabelsKey, 2.0))
}
