package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/textnb/sklearn/naive_bayes"
)

// modelStats is the output of the stats command.
type modelStats struct {
	naive_bayes.Stats
	Labels []string           `json:"labels"`
	Config naive_bayes.Config `json:"config"`
}

func (a *app) statsCmd() *cobra.Command {
	var mf modelFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show label and vocabulary statistics of a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clf, err := a.loadClassifier(&mf)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), modelStats{
				Stats:  clf.Stats(),
				Labels: clf.Labels(),
				Config: clf.Config(),
			})
		},
	}
	mf.bind(cmd)
	return cmd
}
