package main

import (
	"io"
	"log/slog"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/export"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm/openai"
	"github.com/joseph-ayodele/contract-analyzer/internal/ocr"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

// app carries configuration and the logger from the root command to subcommands.
type app struct {
	cfg     *common.Config
	logger  *slog.Logger
	closers []io.Closer
}

// release closes what the subcommand opened, such as an in-process OCR engine.
func (a *app) release() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("app.release.failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) extractor() *ocr.Extractor {
	c := a.cfg.OCR
	ext := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      c.Pdftoppm,
		Tesseract:     c.Tesseract,
		TesseractLang: c.Lang,
		DPI:           c.DPI,
		MaxPages:      c.MaxPages,
		TessdataDir:   c.TessdataDir,
		Engine:        c.Engine,
		MinTextChars:  c.MinTextChars,
	}, a.logger)
	a.closers = append(a.closers, ext)
	return ext
}

func (a *app) analyzer() *openai.Client {
	c := a.cfg.LLM
	return openai.NewClient(openai.Config{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		Endpoint:    c.Endpoint,
		Deployment:  c.Deployment,
		APIVersion:  c.APIVersion,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		Lenient:     c.Lenient,
	}, a.logger)
}

func (a *app) persister() *results.Persister {
	return results.NewPersister(a.cfg.Results.Dir, a.logger)
}

func (a *app) exporter() *export.Service {
	return export.NewService(a.logger)
}

// processor wires the full pipeline. A missing LLM configuration is logged, not
// fatal: each document then fails with the configuration message.
func (a *app) processor(store *results.Persister) *pipeline.Processor {
	if err := a.cfg.ValidateLLM(); err != nil {
		a.logger.Warn("config.llm.missing", "error", err)
	}
	return pipeline.NewProcessor(a.extractor(), a.analyzer(), store, a.logger,
		pipeline.WithDefaultMaxChars(a.cfg.Truncation.MaxChars),
	)
}
