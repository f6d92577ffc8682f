package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/textnb/internal/dataset"
	"github.com/YuminosukeSato/textnb/internal/report"
	"github.com/YuminosukeSato/textnb/metrics"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// evaluation is the JSON output of the evaluate command.
type evaluation struct {
	Examples  int             `json:"examples"`
	Evaluated int             `json:"evaluated"`
	Skipped   int             `json:"skipped"`
	Report    *metrics.Report `json:"report"`
}

func (a *app) evaluateCmd() *cobra.Command {
	var (
		mf     modelFlags
		data   string
		plot   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a model on a labelled dataset",
		Long: "Predicts every example of the dataset and reports precision, recall and F-measure.\n" +
			"Examples predicted as unknown, or labelled with a label the model never learned, are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clf, err := a.loadClassifier(&mf)
			if err != nil {
				return err
			}
			examples, err := dataset.ReadFile(data)
			if err != nil {
				return err
			}

			logger := log.GetLoggerWithName("textnb")
			ev := evaluation{Examples: len(examples)}
			for i, ex := range examples {
				recorded, err := clf.Evaluate(ex.Input, ex.Label)
				if errors.Is(err, errors.ErrInvalidArgument) {
					logger.Warn("example skipped", err, log.LabelKey, ex.Label, "example", i)
					ev.Skipped++
					continue
				}
				if err != nil {
					return errors.Wrapf(err, "example %d", i)
				}
				if recorded {
					ev.Evaluated++
				} else {
					ev.Skipped++
				}
			}

			ev.Report, err = clf.Metrics()
			if err != nil {
				return err
			}
			if plot != "" {
				if err := report.PlotLabelMetrics(ev.Report, plot); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ev)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "evaluated %d of %d examples (%d skipped)\n", ev.Evaluated, ev.Examples, ev.Skipped)
			return writeReport(cmd.OutOrStdout(), ev.Report)
		},
	}
	mf.bind(cmd)
	cmd.Flags().StringVar(&data, "data", "", "labelled dataset file")
	cmd.Flags().StringVar(&plot, "plot", "", "write a per-label chart to this image file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
