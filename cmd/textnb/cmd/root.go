package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/textnb/internal/config"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.File
}

// NewRootCmd builds a fresh command tree. Tests build one per case.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "textnb",
		Short:         "textnb: Naive Bayes text classification",
		Long:          "Train, evaluate, cross-validate and query Naive Bayes text classifiers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML configuration file")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.StringVar(&a.logFormat, "log-format", "", "log format: json or console (overrides config)")

	root.AddCommand(
		a.trainCmd(),
		a.predictCmd(),
		a.oddsCmd(),
		a.evaluateCmd(),
		a.cvCmd(),
		a.statsCmd(),
		a.modelsCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return log.SetupLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
}
