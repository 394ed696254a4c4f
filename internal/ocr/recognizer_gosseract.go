//go:build gosseract

package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// gosseractRecognizer runs tesseract in-process through cgo bindings.
type gosseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func newGosseractRecognizer(cfg Config) (PageRecognizer, error) {
	client := gosseract.NewClient()
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(cfg.TesseractLang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set psm: %w", err)
		}
	}
	return &gosseractRecognizer{client: client}, nil
}

func (g *gosseractRecognizer) Recognize(ctx context.Context, img string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return "", errors.New("gosseract client closed")
	}
	if err := g.client.SetImage(img); err != nil {
		return "", fmt.Errorf("gosseract set image: %w", err)
	}
	txt, err := g.client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract text: %w", err)
	}
	return txt, nil
}

func (g *gosseractRecognizer) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
