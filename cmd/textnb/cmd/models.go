package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) modelsCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the model registry",
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "model registry database (default from config)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(storePath)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "name\ttype\tlabels\tvocabulary\tsaved\n")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					e.Name, e.ModelType, len(e.Labels), e.Vocabulary, e.SavedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a stored model's envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(storePath)
			if err != nil {
				return err
			}
			defer s.Close()

			env, err := s.Load(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), env)
		},
	}

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(storePath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
