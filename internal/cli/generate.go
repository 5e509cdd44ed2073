package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/typedsql/compiler"
	"github.com/syssam/typedsql/compiler/gen"
)

func newGenerateCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the descriptor package of a schema definition",
		Long: `Generates one file for the schema and one file per table into the output
directory. With --watch, the package is generated again each time the
definition changes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Out == "" {
				return errors.New("missing output directory: set --out or " + EnvPrefix + "OUT")
			}
			opts := []gen.Option{gen.WithTarget(a.cfg.Out), gen.WithLogger(a.logger)}
			if a.cfg.Package != "" {
				opts = append(opts, gen.WithPackage(a.cfg.Package))
			}
			if a.cfg.Workers > 0 {
				opts = append(opts, gen.WithWorkers(a.cfg.Workers))
			}
			generate := func(ctx context.Context) error {
				files, err := compiler.Generate(ctx, a.cfg.Definition, opts...)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}
			if !watch {
				return generate(cmd.Context())
			}
			a.logger.Info("watching schema definition", "path", a.cfg.Definition, "target", a.cfg.Out)
			return compiler.Watch(cmd.Context(), a.cfg.Definition, generate, compiler.WithWatchLogger(a.logger))
		},
	}
	cmd.Flags().StringVarP(&a.cfg.Out, "out", "o", a.cfg.Out, "target directory of the generated package")
	cmd.Flags().StringVar(&a.cfg.Package, "package", a.cfg.Package, "name of the generated package (default from the definition or the target directory)")
	cmd.Flags().IntVar(&a.cfg.Workers, "workers", a.cfg.Workers, "number of files generated in parallel (default GOMAXPROCS)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate whenever the definition changes")
	return cmd
}
