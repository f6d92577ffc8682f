package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/internal/store"
	"github.com/YuminosukeSato/textnb/metrics"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
	"github.com/YuminosukeSato/textnb/sklearn/naive_bayes"
)

// learningFlags override the classifier section of the config file.
type learningFlags struct {
	presence  bool
	smoothing float64
}

func (lf *learningFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&lf.presence, "presence", false, "count a token at most once per example")
	cmd.Flags().Float64Var(&lf.smoothing, "smoothing", naive_bayes.DefaultSmoothingFactor, "additive smoothing factor in [0,1]")
}

func (lf *learningFlags) apply(cmd *cobra.Command, cfg *naive_bayes.Config) {
	if cmd.Flags().Changed("presence") {
		cfg.ConsiderOnlyPresence = lf.presence
	}
	if cmd.Flags().Changed("smoothing") {
		cfg.SmoothingFactor = naive_bayes.Smoothing(lf.smoothing)
	}
}

// modelFlags select a learned model either from a JSON file or from the registry.
type modelFlags struct {
	file  string
	store string
	name  string
}

func (mf *modelFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mf.file, "model", "", "model file written by train --out")
	cmd.Flags().StringVar(&mf.store, "store", "", "model registry database (default from config)")
	cmd.Flags().StringVar(&mf.name, "name", "", "model name in the registry")
}

// newClassifier builds an empty classifier from the config file.
func (a *app) newClassifier(cfg naive_bayes.Config) (*naive_bayes.TextClassifier, error) {
	prep := *a.cfg
	prep.Classifier = cfg
	opts, err := prep.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, naive_bayes.WithLogger(log.GetLoggerWithName("textnb")))
	return naive_bayes.NewTextClassifier(opts...)
}

// loadClassifier restores and consolidates the model selected by mf. The
// prep pipeline comes from the config file since models do not carry one.
func (a *app) loadClassifier(mf *modelFlags) (*naive_bayes.TextClassifier, error) {
	clf, err := a.newClassifier(naive_bayes.Config{})
	if err != nil {
		return nil, err
	}

	switch {
	case mf.file != "":
		if err := model.LoadModel(clf, mf.file); err != nil {
			return nil, errors.Wrapf(err, "load %s", mf.file)
		}
	case mf.name != "":
		s, err := a.openStore(mf.store)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		env, err := s.Load(mf.name)
		if err != nil {
			return nil, err
		}
		if err := env.Restore(clf); err != nil {
			return nil, errors.Wrapf(err, "restore %q", mf.name)
		}
	default:
		return nil, errors.NewInvalidArgumentError("load", "either --model or --name is required")
	}

	if err := clf.Consolidate(); err != nil {
		return nil, err
	}
	return clf, nil
}

func (a *app) openStore(path string) (*store.Store, error) {
	if path == "" {
		path = a.cfg.Store
	}
	return store.Open(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeReport prints the macro averages followed by one row per label.
func writeReport(w io.Writer, r *metrics.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "label\tprecision\trecall\tf-measure\n")
	for _, label := range r.Labels {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\n", label,
			r.Details.Precision[label], r.Details.Recall[label], r.Details.FMeasure[label])
	}
	fmt.Fprintf(tw, "average\t%.4f\t%.4f\t%.4f\n", r.AvgPrecision, r.AvgRecall, r.AvgFMeasure)
	return tw.Flush()
}
