package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// PageRecognizer turns one rendered page image into text.
type PageRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

func newRecognizer(cfg Config, r Runner, logger *slog.Logger) PageRecognizer {
	if cfg.Engine == "gosseract" {
		rec, err := newGosseractRecognizer(cfg)
		if err == nil {
			return rec
		}
		logger.Warn("ocr.engine.fallback", "engine", cfg.Engine, "error", err, "using", "tesseract")
	}
	return tesseractCLI{cfg: cfg, runner: r}
}

type tesseractCLI struct {
	cfg    Config
	runner Runner
}

// Recognize runs: tesseract <img> stdout -l <lang> [--tessdata-dir D] [--psm N] [--oem N]
func (t tesseractCLI) Recognize(ctx context.Context, img string) (string, error) {
	args := []string{img, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
