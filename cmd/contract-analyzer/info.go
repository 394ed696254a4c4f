package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-analyzer/internal/ingest"
	"github.com/joseph-ayodele/contract-analyzer/internal/ocr"
	"github.com/joseph-ayodele/contract-analyzer/internal/truncate"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.pdf>",
		Short: "Show page count, extraction method and length info without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.release()
			file, err := ingest.ReadFile(args[0])
			if err != nil {
				return err
			}
			pages, err := ocr.CountPages(file.Data)
			if err != nil {
				a.logger.Warn("info.page_count.failed", "file", file.Name, "error", err)
			}
			ext, err := a.extractor().Extract(cmd.Context(), file.Name, file.Data)
			if err != nil {
				return err
			}
			newPresenter(cmd.OutOrStdout()).Info(file.Name, pages, ext, truncate.Info(ext.Text))
			return nil
		},
	}
}
