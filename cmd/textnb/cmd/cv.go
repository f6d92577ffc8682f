package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/textnb/internal/dataset"
	"github.com/YuminosukeSato/textnb/internal/report"
	"github.com/YuminosukeSato/textnb/sklearn/model_selection"
)

func (a *app) cvCmd() *cobra.Command {
	var (
		data       string
		folds      int
		stratified bool
		shuffle    bool
		seed       uint64
		plot       string
		asJSON     bool
		lf         learningFlags
	)

	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Cross-validate on a labelled dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.CV
			if cmd.Flags().Changed("folds") {
				opts.Folds = folds
			}
			if cmd.Flags().Changed("stratified") {
				opts.Stratified = stratified
			}
			if cmd.Flags().Changed("shuffle") {
				opts.Shuffle = shuffle
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}

			cfg := a.cfg.Classifier
			lf.apply(cmd, &cfg)
			clf, err := a.newClassifier(cfg)
			if err != nil {
				return err
			}
			examples, err := dataset.ReadFile(data)
			if err != nil {
				return err
			}

			var splitter model_selection.Splitter = model_selection.NewKFold(opts.Folds, opts.Shuffle, opts.Seed)
			if opts.Stratified {
				splitter = model_selection.NewStratifiedKFold(opts.Folds, opts.Shuffle, opts.Seed)
			}
			result, err := model_selection.CrossValidate(cmd.Context(), clf, examples, splitter)
			if err != nil {
				return err
			}

			if plot != "" {
				if err := report.PlotFolds(result, plot); err != nil {
					return err
				}
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "fold\ttrain\ttest\tevaluated\taccuracy\tf-measure\n")
			for _, f := range result.Folds {
				if f.Err != nil {
					fmt.Fprintf(tw, "%d\t%d\t%d\t-\tfailed: %v\t\n", f.Fold, f.TrainSize, f.TestSize, f.Err)
					continue
				}
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.4f\t%.4f\n",
					f.Fold, f.TrainSize, f.TestSize, f.Evaluated, f.Accuracy, f.Report.AvgFMeasure)
			}
			fmt.Fprintf(tw, "mean\t\t\t\t%.4f ± %.4f\t%.4f ± %.4f\n",
				result.MeanAccuracy, result.StdAccuracy, result.MeanFMeasure, result.StdFMeasure)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "labelled dataset file")
	cmd.Flags().IntVar(&folds, "folds", 5, "number of folds (default from config)")
	cmd.Flags().BoolVar(&stratified, "stratified", true, "keep label proportions in every fold")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "shuffle before splitting")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed")
	cmd.Flags().StringVar(&plot, "plot", "", "write a per-fold chart to this image file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	lf.bind(cmd)
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
