package naive_bayes

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/pkg/errors"
)

func TestExportJSONLayout(t *testing.T) {
	c, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)
	require.NoError(t, c.Learn("b a b", "y"))
	require.NoError(t, c.Learn("c", "x"))

	doc, err := c.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`[{"considerOnlyPresence":false,"smoothingFactor":1},{"y":1,"x":1},{"y":{"b":2,"a":1},"x":{"c":1}},{"y":3,"x":1},["b","a","c"]]`,
		string(doc))
}

func TestExportJSONFresh(t *testing.T) {
	c, err := NewTextClassifier()
	require.NoError(t, err)

	doc, err := c.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"considerOnlyPresence":false,"smoothingFactor":1},{},{},{},[]]`, string(doc))
}

func TestExportImportRoundTrip(t *testing.T) {
	src := consolidated(t, WithConfig(Config{ConsiderOnlyPresence: true, SmoothingFactor: Smoothing(0.25)}))
	doc, err := src.ExportJSON()
	require.NoError(t, err)

	dst, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)
	require.NoError(t, dst.ImportJSON(doc))

	assert.Equal(t, src.Stats(), dst.Stats())
	assert.Equal(t, src.Labels(), dst.Labels())
	assert.Equal(t, src.Config(), dst.Config())
	assert.True(t, dst.State().Learned)
	assert.False(t, dst.State().Consolidated)

	// config is locked after import
	assert.True(t, errors.Is(dst.DefineConfig(Config{}), errors.ErrInvalidState))

	_, err = dst.Predict("i need a loan")
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	require.NoError(t, dst.Consolidate())

	for _, q := range []string{"I would like to borrow 50000 to buy a new audi r8 in new york", "I want to pay my car loan early", "happy"} {
		want, err := src.ComputeOdds(q)
		require.NoError(t, err)
		got, err := dst.ComputeOdds(q)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}

	again, err := dst.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, string(doc), string(again))
}

func TestImportRestoresLabelOrderFromDocument(t *testing.T) {
	doc := `[{"considerOnlyPresence":false,"smoothingFactor":0.5},` +
		`{"b":2,"a":1},` +
		`{"a":{"t1":1,"t2":1},"b":{"t3":2,"t4":1,"t5":1,"t6":1,"t7":1,"t8":1,"t9":1,"t10":1}},` +
		`{"a":2,"b":9},` +
		`["t1","t2","t3","t4","t5","t6","t7","t8","t9","t10"]]`

	c, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)
	require.NoError(t, c.ImportJSON([]byte(doc)))

	assert.Equal(t, []string{"b", "a"}, c.Labels())
	assert.Equal(t, 0.5, *c.Config().SmoothingFactor)
	require.NoError(t, c.Consolidate())

	label, err := c.Predict("t1 t2")
	require.NoError(t, err)
	assert.Equal(t, "a", label)
}

func TestImportJSONRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"not json", "[1,2"},
		{"object", `{"a":1}`},
		{"too short", `[{},{},{},[]]`},
		{"element not object", `[{},[],{},{},[]]`},
		{"vocabulary not array", `[{},{},{},{},{}]`},
		{"fractional count", `[{},{"x":1.5},{},{},[]]`},
		{"negative count", `[{},{"x":1},{},{"x":-1},[]]`},
		{"string count", `[{},{"x":"1"},{},{},[]]`},
		{"zero samples", `[{},{"x":0},{},{},[]]`},
		{"reserved label", `[{},{"unknown":1},{},{},[]]`},
		{"vocabulary of numbers", `[{},{"x":1},{},{},[1,2]]`},
		{"token outside vocabulary", `[{},{"x":1},{"x":{"a":1}},{"x":1},["b"]]`},
		{"count label missing from samples", `[{},{"x":1},{"y":{"a":1}},{"x":1},["a"]]`},
		{"words label missing from samples", `[{},{"x":1},{},{"y":1},[]]`},
		{"count value not object", `[{},{"x":1},{"x":1},{"x":1},[]]`},
		{"duplicate key", `[{},{"x":1,"x":2},{},{},[]]`},
		{"non-finite smoothing", `[{"smoothingFactor":"NaN"},{},{},{},[]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLoanClassifier(t)
			before := c.Stats()

			err := c.ImportJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "%v", err)

			// nothing changed
			assert.Equal(t, before, c.Stats())
			assert.Equal(t, []string{"prepay", "autoloan"}, c.Labels())
		})
	}
}

func TestImportJSONResetsEvaluationState(t *testing.T) {
	quietWarnings(t)
	c := consolidated(t)
	_, err := c.Evaluate("i need a loan", "autoloan")
	require.NoError(t, err)

	doc, err := c.ExportJSON()
	require.NoError(t, err)
	require.NoError(t, c.ImportJSON(doc))

	_, err = c.Metrics()
	assert.True(t, errors.Is(err, errors.ErrInvalidState))
	assert.Equal(t, model.PhaseLearning.String(), c.State().Phase)
}

func TestEnvelope(t *testing.T) {
	c := consolidated(t)

	env, err := c.Envelope()
	require.NoError(t, err)
	assert.Equal(t, ModelType, env.ModelType)
	assert.Equal(t, []string{"prepay", "autoloan"}, env.Labels)
	assert.Equal(t, 24, env.Vocabulary)

	var cfg Config
	require.NoError(t, json.Unmarshal(env.Config, &cfg))
	assert.Equal(t, 1.0, *cfg.SmoothingFactor)

	restored, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)
	require.NoError(t, env.Restore(restored))
	assert.Equal(t, c.Stats(), restored.Stats())
}

func TestEnvelopeIsConsistentUnderConcurrentLearn(t *testing.T) {
	c, err := NewTextClassifier(WithPrepTasks(whitespace))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			label := fmt.Sprintf("label%d", i%7)
			_ = c.Learn(fmt.Sprintf("tok%d shared", i), label)
		}
	}()

	for i := 0; i < 50; i++ {
		env, err := c.Envelope()
		require.NoError(t, err)

		var parts []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Model, &parts))
		require.Len(t, parts, 5)

		var vocab []string
		require.NoError(t, json.Unmarshal(parts[4], &vocab))
		assert.Len(t, vocab, env.Vocabulary)

		keys, _, err := decodeOrderedInts(parts[1])
		require.NoError(t, err)
		if len(keys) == 0 {
			assert.Empty(t, env.Labels)
		} else {
			assert.Equal(t, keys, env.Labels)
		}
	}
	wg.Wait()
}
