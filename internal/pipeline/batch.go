package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

// ProcessBatch handles documents one at a time, in order. A failed document is
// recorded and the loop moves on. The report is saved when the batch is non-empty.
func (p *Processor) ProcessBatch(ctx context.Context, docs []Document, opts Options) results.BatchReport {
	start := time.Now()
	rep := results.BatchReport{
		ID:        uuid.New().String(),
		CreatedAt: start,
		Outcomes:  make([]results.Outcome, 0, len(docs)),
	}
	ctx = common.WithBatchID(ctx, rep.ID)
	p.logger.Info("processor.batch.start", "batch_id", rep.ID, "documents", len(docs))

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("processor.batch.cancelled", "batch_id", rep.ID, "remaining", len(docs)-i)
			break
		}
		// fresh request id per document
		dctx := common.WithRequestID(ctx, uuid.New().String())
		out, err := p.ProcessDocument(dctx, doc, opts)
		rep.Outcomes = append(rep.Outcomes, out)
		rep.Processed++
		if err != nil {
			rep.Failed++
		}
	}

	if len(rep.Outcomes) > 0 {
		path, err := p.writer.SaveBatch(rep)
		if err != nil {
			p.logger.Error("processor.batch.save_failed", "batch_id", rep.ID, "err", err)
		} else {
			rep.File = path
		}
	}

	p.logger.Info("processor.batch.done",
		"batch_id", rep.ID,
		"processed", rep.Processed,
		"failed", rep.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep
}
