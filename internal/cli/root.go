// Package cli implements the typedsql command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/typedsql/compiler/load"
	"github.com/syssam/typedsql/dialect/sql"
)

var version = "dev"

// Execute runs the CLI and returns its exit code.
func Execute() int {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type app struct {
	cfg    *Config
	logger *slog.Logger
}

// NewRootCmd returns the root command. Flags default to the values of cfg
// and write back into it.
func NewRootCmd(cfg *Config) *cobra.Command {
	a := &app{cfg: cfg, logger: slog.Default()}
	root := &cobra.Command{
		Use:   "typedsql",
		Short: "Typed table descriptors for SQL schemas",
		Long: `typedsql generates Go descriptor packages from YAML schema definitions,
prints their DDL and validates them against live databases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfg.Definition, "config", "c", cfg.Definition, "path of the YAML schema definition")
	flags.StringVar(&cfg.Dialect, "dialect", cfg.Dialect, "SQL dialect (postgres, mysql, sqlite)")
	flags.StringVar(&cfg.DSN, "dsn", cfg.DSN, "data source name of the database")
	flags.StringVar(&cfg.Schema, "schema", cfg.Schema, "database schema to inspect")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")

	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newDDLCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// definition loads the YAML definition and its runtime metadata.
func (a *app) definition() (*sql.Schema, error) {
	def, err := load.LoadFile(a.cfg.Definition)
	if err != nil {
		return nil, err
	}
	s, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Definition, err)
	}
	return s, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the typedsql version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "typedsql version %s\n", version)
			return err
		},
	}
}
