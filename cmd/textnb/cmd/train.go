package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/internal/dataset"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

func (a *app) trainCmd() *cobra.Command {
	var (
		data      string
		out       string
		storePath string
		name      string
		lf        learningFlags
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn a dataset and save the model",
		Long: "Learns every example of a .tsv or .jsonl dataset, consolidates, and writes the\n" +
			"learnings to --out, to the registry under --name, or both.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && name == "" {
				return errors.NewInvalidArgumentError("train", "either --out or --name is required")
			}

			cfg := a.cfg.Classifier
			lf.apply(cmd, &cfg)
			clf, err := a.newClassifier(cfg)
			if err != nil {
				return err
			}

			format, err := dataset.FormatFromPath(data)
			if err != nil {
				return err
			}
			f, err := os.Open(data)
			if err != nil {
				return errors.Wrapf(err, "open dataset %s", data)
			}
			defer f.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			examples, errc := dataset.Stream(ctx, f, format)
			n, err := model.LearnStream(ctx, clf, examples)
			if err != nil {
				return errors.Wrapf(err, "dataset %s", data)
			}
			if err := <-errc; err != nil {
				return errors.Wrapf(err, "dataset %s", data)
			}

			if err := clf.Consolidate(); err != nil {
				return err
			}

			if out != "" {
				if err := model.SaveModel(clf, out); err != nil {
					return err
				}
			}
			if name != "" {
				s, err := a.openStore(storePath)
				if err != nil {
					return err
				}
				defer s.Close()
				env, err := clf.Envelope()
				if err != nil {
					return err
				}
				if err := s.Save(name, env); err != nil {
					return err
				}
			}

			stats := clf.Stats()
			log.GetLoggerWithName("textnb").Info("model trained",
				log.SourceKey, data,
				log.ExamplesKey, n,
				log.VocabularyKey, stats.Vocabulary,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "learned %d examples: %d labels, vocabulary %d\n",
				n, len(clf.Labels()), stats.Vocabulary)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "dataset file (.tsv, .txt, .jsonl, .ndjson)")
	cmd.Flags().StringVar(&out, "out", "", "write the model JSON to this file")
	cmd.Flags().StringVar(&storePath, "store", "", "model registry database (default from config)")
	cmd.Flags().StringVar(&name, "name", "", "save the model in the registry under this name")
	lf.bind(cmd)
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
