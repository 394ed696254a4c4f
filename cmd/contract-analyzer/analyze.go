package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-analyzer/internal/export"
	"github.com/joseph-ayodele/contract-analyzer/internal/ingest"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

type analyzeFlags struct {
	dir        string
	skipHidden bool
	maxChars   int
	export     string
	out        string
	asJSON     bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [file.pdf ...]",
		Short: "Analyze PDFs one after another and store the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.release()
			paths, err := collectPaths(args, f.dir, f.skipHidden, a.logger)
			if err != nil {
				return err
			}
			if f.maxChars < 0 {
				return errors.New("--max-chars must not be negative")
			}
			if f.export != "" && f.export != export.FormatXLSX && f.export != export.FormatCSV {
				return fmt.Errorf("--export must be %s or %s", export.FormatXLSX, export.FormatCSV)
			}

			docs := make([]pipeline.Document, 0, len(paths))
			for _, p := range paths {
				file, err := ingest.ReadFile(p)
				if err != nil {
					a.logger.Error("analyze.read.failed", "path", p, "error", err)
					docs = append(docs, pipeline.Document{Name: filepath.Base(p), ReadErr: err})
					continue
				}
				docs = append(docs, pipeline.Document{Name: file.Name, Data: file.Data})
			}

			store := a.persister()
			rep := a.processor(store).ProcessBatch(cmd.Context(), docs, pipeline.Options{MaxChars: f.maxChars})

			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				newPresenter(cmd.OutOrStdout()).Batch(rep)
			}

			if f.export != "" {
				path, err := writeExport(a, rep, f.export, f.out, store.Dir())
				if err != nil {
					return err
				}
				cmd.Printf("Exported %s\n", path)
			}
			if rep.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", rep.Failed, rep.Processed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.dir, "dir", "", "analyze every PDF under this directory")
	cmd.Flags().BoolVar(&f.skipHidden, "skip-hidden", true, "skip hidden files and directories with --dir")
	cmd.Flags().IntVar(&f.maxChars, "max-chars", 0, "cap on characters sent to the model (0 = automatic)")
	cmd.Flags().StringVar(&f.export, "export", "", "also write a spreadsheet: xlsx|csv")
	cmd.Flags().StringVar(&f.out, "out", "", "export path (default next to the batch report)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the batch report as JSON")
	return cmd
}

func collectPaths(args []string, dir string, skipHidden bool, logger *slog.Logger) ([]string, error) {
	paths := append([]string{}, args...)
	if dir != "" {
		found, stats, err := ingest.ListPDFs(dir, skipHidden)
		if err != nil {
			return nil, err
		}
		if stats.Failed > 0 {
			logger.Warn("analyze.walk.incomplete",
				"dir", dir,
				"scanned", stats.Scanned,
				"matched", stats.Matched,
				"failed", stats.Failed,
			)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no PDFs given: pass files or --dir")
	}
	return paths, nil
}

func writeExport(a *app, rep results.BatchReport, format, out, dir string) (string, error) {
	b, _, err := a.exporter().Batch(rep, format)
	if err != nil {
		return "", err
	}
	if out == "" {
		stem := "contracts_" + rep.ID
		if rep.File != "" {
			base := filepath.Base(rep.File)
			stem = base[:len(base)-len(filepath.Ext(base))]
		}
		out = filepath.Join(dir, stem+"."+format)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return out, nil
}
