package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) predictCmd() *cobra.Command {
	var mf modelFlags

	cmd := &cobra.Command{
		Use:   "predict TEXT...",
		Short: "Predict the label of each argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clf, err := a.loadClassifier(&mf)
			if err != nil {
				return err
			}

			inputs := make([]any, len(args))
			for i, arg := range args {
				inputs[i] = arg
			}
			labels, err := clf.PredictBatch(inputs)
			if err != nil {
				return err
			}
			for _, label := range labels {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}
	mf.bind(cmd)
	return cmd
}

func (a *app) oddsCmd() *cobra.Command {
	var (
		mf     modelFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "odds TEXT...",
		Short: "Show the odds of every label for one text",
		Long:  "Arguments are joined with single spaces and scored as one text, highest odds first.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clf, err := a.loadClassifier(&mf)
			if err != nil {
				return err
			}

			odds, err := clf.ComputeOdds(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), odds)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, o := range odds {
				fmt.Fprintf(tw, "%s\t%.6f\n", o.Label, o.Odds)
			}
			return tw.Flush()
		},
	}
	mf.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
