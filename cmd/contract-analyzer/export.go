package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-analyzer/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <batch-report>",
		Short: "Write a stored batch report as XLSX or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.persister()
			rep, err := store.LoadBatch(args[0])
			if err != nil {
				return err
			}
			path, err := writeExport(a, rep, format, out, store.Dir())
			if err != nil {
				return err
			}
			cmd.Printf("Exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", export.FormatXLSX, "xlsx|csv")
	cmd.Flags().StringVar(&out, "out", "", "output path (default next to the batch report)")
	return cmd
}
