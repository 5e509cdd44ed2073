package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/typedsql/dialect/sql/schema"
)

func newDDLCmd(a *app) *cobra.Command {
	var (
		ifNotExists bool
		indent      string
		qualifier   string
	)
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the statements creating a schema definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.definition()
			if err != nil {
				return err
			}
			var opts []schema.DDLOption
			if ifNotExists {
				opts = append(opts, schema.IfNotExists())
			}
			if indent != "" {
				opts = append(opts, schema.WithIndent(indent))
			}
			if cmd.Flags().Changed("qualifier") {
				opts = append(opts, schema.WithQualifier(qualifier))
			}
			stmts, err := schema.CreateStatements(cmd.Context(), a.cfg.Dialect, s, opts...)
			if err != nil {
				return err
			}
			a.logger.Debug("planned statements", "dialect", a.cfg.Dialect, "count", len(stmts))
			for _, stmt := range stmts {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "create tables only if they do not exist")
	cmd.Flags().StringVar(&indent, "indent", "", "indentation of column definitions")
	cmd.Flags().StringVar(&qualifier, "qualifier", "", "schema qualifying the tables, empty for none (default depends on the dialect)")
	return cmd
}
