package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/internal/store"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
	"github.com/YuminosukeSato/textnb/sklearn/model_selection"
)

const loansTSV = `prepay	i want to prepay my loan
prepay	i want to close my loan
prepay	i want to foreclose my loan
prepay	i would like to pay the loan balance
autoloan	i would like to borrow money to buy a vehice
autoloan	i need loan for car
autoloan	i need loan for a new vehicle
autoloan	i need loan for a new mobike
autoloan	i need money for a new car
`

// workspace holds the files of one CLI scenario.
type workspace struct {
	dir   string
	data  string
	model string
	db    string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	previous := log.CurrentProvider()
	t.Cleanup(func() { log.SetProvider(previous) })

	dir := t.TempDir()
	ws := &workspace{
		dir:   dir,
		data:  filepath.Join(dir, "loans.tsv"),
		model: filepath.Join(dir, "loans.json"),
		db:    filepath.Join(dir, "models.db"),
	}
	require.NoError(t, os.WriteFile(ws.data, []byte(loansTSV), 0o600))
	return ws
}

// run executes one command line and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, stderr bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (ws *workspace) train(t *testing.T) {
	t.Helper()
	out, err := run(t, "train", "--data", ws.data, "--out", ws.model, "--store", ws.db, "--name", "loans")
	require.NoError(t, err)
	assert.Equal(t, "learned 9 examples: 2 labels, vocabulary 24\n", out)
}

func TestTrainAndPredict(t *testing.T) {
	ws := newWorkspace(t)
	ws.train(t)

	out, err := run(t, "predict", "--model", ws.model, "I need a LOAN", "happy", "I want to pay my car loan early")
	require.NoError(t, err)
	assert.Equal(t, "autoloan\nunknown\nprepay\n", out)

	// the registry copy predicts the same
	out, err = run(t, "predict", "--store", ws.db, "--name", "loans", "I need a LOAN")
	require.NoError(t, err)
	assert.Equal(t, "autoloan\n", out)
}

func TestTrainWritesImportableModel(t *testing.T) {
	ws := newWorkspace(t)
	ws.train(t)

	doc, err := os.ReadFile(ws.model)
	require.NoError(t, err)
	var parts []json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &parts))
	assert.Len(t, parts, 5)
	assert.JSONEq(t, `{"considerOnlyPresence":false,"smoothingFactor":1}`, string(parts[0]))
}

func TestTrainFlagsOverrideConfig(t *testing.T) {
	ws := newWorkspace(t)
	cfgPath := filepath.Join(ws.dir, "textnb.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("classifier:\n  smoothingFactor: 0.5\n"), 0o600))

	_, err := run(t, "--config", cfgPath, "train", "--data", ws.data, "--out", ws.model, "--presence")
	require.NoError(t, err)

	out, err := run(t, "stats", "--model", ws.model)
	require.NoError(t, err)
	var st modelStats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.True(t, st.Config.ConsiderOnlyPresence)
	assert.Equal(t, 0.5, *st.Config.SmoothingFactor)
	assert.Equal(t, 35, st.LabelWiseWords["autoloan"])
	assert.Equal(t, []string{"prepay", "autoloan"}, st.Labels)
}

func TestTrainErrors(t *testing.T) {
	ws := newWorkspace(t)

	_, err := run(t, "train", "--data", ws.data)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = run(t, "train", "--out", ws.model)
	assert.Error(t, err, "--data is required")

	tiny := filepath.Join(ws.dir, "tiny.tsv")
	require.NoError(t, os.WriteFile(tiny, []byte("a\tx y\nb\tz\n"), 0o600))
	_, err = run(t, "train", "--data", tiny, "--out", ws.model)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
	assert.NoFileExists(t, ws.model)

	broken := filepath.Join(ws.dir, "broken.tsv")
	require.NoError(t, os.WriteFile(broken, []byte("no tab\n"), 0o600))
	_, err = run(t, "train", "--data", broken, "--out", ws.model)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = run(t, "--log-level", "loud", "train", "--data", ws.data, "--out", ws.model)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestOdds(t *testing.T) {
	ws := newWorkspace(t)
	ws.train(t)

	out, err := run(t, "odds", "--model", ws.model, "--json", "loan")
	require.NoError(t, err)

	var odds []model.LabelOdds
	require.NoError(t, json.Unmarshal([]byte(out), &odds))
	require.Len(t, odds, 2)
	assert.Equal(t, "prepay", odds[0].Label)
	assert.InDelta(t, 0.26303, odds[0].Odds, 1e-4)

	out, err = run(t, "odds", "--model", ws.model, "happy", "days")
	require.NoError(t, err)
	assert.Equal(t, "unknown  0.000000\n", out)
}

func TestEvaluate(t *testing.T) {
	ws := newWorkspace(t)
	ws.train(t)

	out, err := run(t, "evaluate", "--model", ws.model, "--data", ws.data, "--json")
	require.NoError(t, err)

	var ev evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &ev))
	assert.Equal(t, 9, ev.Examples)
	assert.Equal(t, 9, ev.Evaluated)
	assert.Equal(t, 1.0, ev.Report.AvgFMeasure)

	plot := filepath.Join(ws.dir, "labels.png")
	out, err = run(t, "evaluate", "--model", ws.model, "--data", ws.data, "--plot", plot)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "evaluated 9 of 9 examples (0 skipped)\n"))
	assert.Contains(t, out, "average")
	assert.FileExists(t, plot)
}

func TestEvaluateSkipsUnknownLabels(t *testing.T) {
	ws := newWorkspace(t)
	ws.train(t)

	extra := filepath.Join(ws.dir, "extra.tsv")
	require.NoError(t, os.WriteFile(extra, []byte("mortgage\ti need a loan for a house\nautoloan\ti need a car\n"), 0o600))

	out, err := run(t, "evaluate", "--model", ws.model, "--data", extra)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "evaluated 1 of 2 examples (1 skipped)\n"))
}

func TestCrossValidate(t *testing.T) {
	ws := newWorkspace(t)

	plot := filepath.Join(ws.dir, "folds.svg")
	out, err := run(t, "cv", "--data", ws.data, "--folds", "3", "--json", "--plot", plot)
	require.NoError(t, err)

	var result model_selection.CVResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Succeeded)
	assert.Len(t, result.Folds, 3)
	assert.FileExists(t, plot)

	out, err = run(t, "cv", "--data", ws.data, "--folds", "3", "--stratified=false", "--shuffle", "--seed", "7")
	if err == nil {
		assert.Contains(t, out, "mean")
	}
}

func TestModelsCommands(t *testing.T) {
	ws := newWorkspace(t)
	ws.train(t)

	out, err := run(t, "models", "list", "--store", ws.db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "loans"))
	assert.Contains(t, lines[1], "NaiveBayes")

	out, err = run(t, "models", "show", "--store", ws.db, "loans")
	require.NoError(t, err)
	var env model.ModelEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, []string{"prepay", "autoloan"}, env.Labels)
	assert.Equal(t, 24, env.Vocabulary)

	out, err = run(t, "models", "delete", "--store", ws.db, "loans")
	require.NoError(t, err)
	assert.Equal(t, "deleted loans\n", out)

	_, err = run(t, "models", "show", "--store", ws.db, "loans")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestLoadRequiresModel(t *testing.T) {
	newWorkspace(t)

	_, err := run(t, "predict", "hello")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = run(t, "stats")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}
