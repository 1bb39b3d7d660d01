// Package cli implements the aggql command.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// app holds the state resolved by the root command before a subcommand runs.
type app struct {
	envFile  string
	logLevel string
	output   string

	config   *config.Config
	logger   *slog.Logger
	compiler *aggql.Compiler
}

// Execute runs the CLI.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		_, _ = fmt.Fprintf(stderr, "%s %v\n", red("Error:"), err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "aggql",
		Short:         "Aggregation query compiler",
		Long:          "Compile aggregation requests to SQL or search DSL, run them on DuckDB, or serve them over Flight and HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before reading AGGQL_* variables")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+config.EnvLogLevel)
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "Output format (text, json)")

	rootCmd.AddCommand(newSQLCmd(a))
	rootCmd.AddCommand(newDSLCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	if a.output != "text" && a.output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", a.output)
	}
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.config = cfg

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		a.logger.Debug("Config warning", "warning", w)
	}

	a.compiler, err = aggql.New(cfg.Compiler(a.logger))
	return err
}
