package main

import (
	"github.com/pterm/pterm"
	"github.com/skadiD/swallow"
	"github.com/spf13/cobra"
)

func newGenCommand(a *app) *cobra.Command {
	var (
		out    string
		opts   database.GenOptions
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate entity structs from information_schema.columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			files, err := db.GenerateEntities(ctx, opts)
			if err != nil {
				return err
			}
			if dryRun {
				for name, src := range files {
					pterm.Fprintln(cmd.OutOrStdout(), "// "+name)
					pterm.Fprintln(cmd.OutOrStdout(), string(src))
				}
				return nil
			}
			if err = database.WriteEntities(out, files); err != nil {
				return err
			}
			pterm.Fprintln(cmd.OutOrStdout(), pterm.Sprintf("%d file(s) written to %s", len(files), out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "model", "output directory")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "model", "package name of the generated files")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "table_schema to read")
	cmd.Flags().StringSliceVarP(&opts.Tables, "table", "t", nil, "only these tables")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print instead of writing files")
	return cmd
}
