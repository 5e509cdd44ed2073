package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/typedsql/compiler/load"
	"github.com/syssam/typedsql/dialect/sql/schema"
)

func newValidateCmd(a *app) *cobra.Command {
	var allowMissing, allowNullability bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a schema definition against a live database",
		Long: `Inspects the database and compares it with the schema definition. Missing
tables or columns and mismatching types are errors and make the command
fail. Columns only present in the database are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expected, err := a.definition()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := []schema.ValidateOption{schema.ForDialect(a.cfg.Dialect)}
			if a.cfg.Schema != "" {
				opts = append(opts, schema.InSchema(a.cfg.Schema))
			}
			if allowMissing {
				opts = append(opts, schema.AllowMissingColumn())
			}
			if allowNullability {
				opts = append(opts, schema.AllowNullabilityMismatch())
			}
			result, err := schema.ValidateDB(cmd.Context(), db, expected, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			if result.HasErrors() {
				return fmt.Errorf("%s: %d validation error(s)", a.cfg.Definition, len(result.Errors))
			}
			a.logger.Info("schema is valid", "path", a.cfg.Definition, "warnings", len(result.Warnings))
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowMissing, "allow-missing-column", false, "report columns missing from the database as warnings")
	cmd.Flags().BoolVar(&allowNullability, "allow-nullability-mismatch", false, "report nullability mismatches as warnings")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Write the schema definition of a live database",
		Long: `Inspects a database schema and prints it as a YAML definition, ready to be
used by generate. Column types are written as in postgres DDL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			s, err := load.FromDatabase(cmd.Context(), db, a.cfg.Dialect, a.cfg.Schema)
			if err != nil {
				return err
			}
			def := load.FromSQL(s)
			def.Package = a.cfg.Package
			data, err := def.Marshal()
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write schema definition: %w", err)
			}
			a.logger.Info("inspected schema", "schema", s.Name(), "tables", len(s.Tables()), "path", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the definition to (default stdout)")
	cmd.Flags().StringVar(&a.cfg.Package, "package", a.cfg.Package, "package name recorded in the definition")
	return cmd
}
