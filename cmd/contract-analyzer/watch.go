package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-analyzer/internal/async"
	"github.com/joseph-ayodele/contract-analyzer/internal/ingest"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

type documentProcessor interface {
	ProcessDocument(ctx context.Context, doc pipeline.Document, opts pipeline.Options) (results.Outcome, error)
}

// watchHandler analyzes one file per queued job. Content already analyzed
// successfully is skipped; failed content is analyzed again on the next event.
type watchHandler struct {
	proc    documentProcessor
	done    *ingest.Dedup
	present *presenter
	opts    pipeline.Options
	logger  *slog.Logger
}

func (h *watchHandler) handle(ctx context.Context, job async.Job) error {
	file, err := ingest.ReadFile(job.Path)
	if err != nil {
		return err
	}
	if h.done.Seen(file.HashHex) {
		h.logger.Info("watch.skip.duplicate", "path", job.Path)
		return nil
	}
	out, err := h.proc.ProcessDocument(ctx, pipeline.Document{Name: file.Name, Data: file.Data}, h.opts)
	h.present.Outcome(out)
	if err != nil {
		return err
	}
	h.done.Mark(file.HashHex)
	return nil
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		dir        string
		initial    bool
		debounce   time.Duration
		skipHidden bool
		maxChars   int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze PDFs as they appear in a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.release()
			if dir == "" {
				return errors.New("--dir is required")
			}
			ctx := cmd.Context()
			proc := a.processor(a.persister())

			h := &watchHandler{
				proc:    proc,
				done:    ingest.NewDedup(),
				present: newPresenter(cmd.OutOrStdout()),
				opts:    pipeline.Options{MaxChars: maxChars},
				logger:  a.logger,
			}
			queue := async.NewProcessorQueue(h.handle, a.logger)

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       []string{dir},
				InitialScan: initial,
				Debounce:    debounce,
				SkipHidden:  skipHidden,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Watching %s for PDFs (Ctrl+C to stop)\n", dir)

			for events != nil || errs != nil {
				select {
				case p, ok := <-events:
					if !ok {
						events = nil
						continue
					}
					if err := queue.Enqueue(ctx, async.Job{Path: p, TraceID: uuid.New().String()}); err != nil {
						a.logger.Warn("watch.enqueue.failed", "path", p, "error", err)
					}
				case _, ok := <-errs:
					if !ok {
						errs = nil
					}
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "folder to watch (recursive)")
	cmd.Flags().BoolVar(&initial, "initial", true, "analyze PDFs already in the folder")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "wait for writes to settle")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "ignore hidden files and directories")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "cap on characters sent to the model (0 = automatic)")
	return cmd
}
