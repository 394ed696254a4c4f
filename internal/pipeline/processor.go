package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
	"github.com/joseph-ayodele/contract-analyzer/internal/ocr"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
	"github.com/joseph-ayodele/contract-analyzer/internal/truncate"
)

// TextExtractor turns PDF bytes into text; *ocr.Extractor satisfies it.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (ocr.ExtractedText, error)
}

// ResultWriter persists per-document results and batch reports; *results.Persister satisfies it.
type ResultWriter interface {
	Save(r results.Record) (string, error)
	SaveBatch(rep results.BatchReport) (string, error)
}

// Document is one uploaded or discovered PDF.
type Document struct {
	Name string
	Data []byte
	// ReadErr records why the file could not be read. Such a document fails
	// without extraction but still gets an outcome in the batch report.
	ReadErr error
}

type Options struct {
	// MaxChars caps the text sent to the model. Zero picks the cap from the text length.
	MaxChars int
}

// Processor coordinates extraction, truncation, analysis and persistence.
type Processor struct {
	extractor TextExtractor
	analyzer  llm.Analyzer
	writer    ResultWriter
	logger    *slog.Logger

	defaultMaxChars int
}

type Option func(*Processor)

// WithDefaultMaxChars sets the cap used when a request does not carry one.
func WithDefaultMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.defaultMaxChars = n
		}
	}
}

func NewProcessor(extractor TextExtractor, analyzer llm.Analyzer, writer ResultWriter, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{extractor: extractor, analyzer: analyzer, writer: writer, logger: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessDocument runs one document through the pipeline. The returned Outcome is
// always populated; err is non-nil when Outcome.Status is failed.
func (p *Processor) ProcessDocument(ctx context.Context, doc Document, opts Options) (results.Outcome, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	out := results.Outcome{FileName: doc.Name, RequestID: rid}
	fail := func(stage string, err error) (results.Outcome, error) {
		out.Status = string(constants.StatusFailed)
		out.Error = err.Error()
		out.ElapsedMS = time.Since(start).Milliseconds()
		p.logger.Error("processor."+stage+".failed",
			"req_id", rid,
			"batch_id", common.BatchIDFromContext(ctx),
			"file", doc.Name,
			"err", err,
			"elapsed_ms", out.ElapsedMS,
		)
		return out, err
	}

	if doc.ReadErr != nil {
		return fail("read", doc.ReadErr)
	}

	// 1) extract
	ext, err := p.extractor.Extract(ctx, doc.Name, doc.Data)
	if err != nil {
		return fail("extract", err)
	}
	out.Method = ext.Method
	out.OCRUsed = ext.OCRUsed
	out.Pages = ext.Pages
	out.Warnings = ext.Warnings
	out.CharsTotal = ext.Chars()
	p.logger.Info("processor.extract.ok",
		"req_id", rid,
		"file", doc.Name,
		"method", ext.Method,
		"ocr_used", ext.OCRUsed,
		"pages", ext.Pages,
		"chars", out.CharsTotal,
	)

	// 2) truncate
	requested := opts.MaxChars
	if requested <= 0 {
		requested = p.defaultMaxChars
	}
	limit := truncate.Resolve(requested, ext.Text)
	text := truncate.Truncate(ext.Text, limit)
	out.CharsSent = len([]rune(text))
	if out.CharsSent < out.CharsTotal {
		p.logger.Info("processor.truncate",
			"req_id", rid,
			"from", out.CharsTotal,
			"to", out.CharsSent,
		)
	}

	// 3) analyze
	analysis, _, err := p.analyzer.Analyze(ctx, llm.AnalyzeRequest{Text: text, FileName: doc.Name})
	if err != nil {
		return fail("analyze", err)
	}
	out.Analysis = &analysis

	// 4) persist
	path, err := p.writer.Save(results.Record{
		FileName:   doc.Name,
		Method:     ext.Method,
		OCRUsed:    ext.OCRUsed,
		Pages:      ext.Pages,
		CharsTotal: out.CharsTotal,
		CharsSent:  out.CharsSent,
		RequestID:  rid,
		Analysis:   analysis,
	})
	if err != nil {
		return fail("save", fmt.Errorf("save result: %w", err))
	}
	out.ResultFile = path
	out.Status = string(constants.StatusSuccess)
	out.ElapsedMS = time.Since(start).Milliseconds()

	p.logger.Info("processor.document.ok",
		"req_id", rid,
		"file", doc.Name,
		"result_file", path,
		"elapsed_ms", out.ElapsedMS,
	)
	return out, nil
}
