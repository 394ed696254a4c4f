package ocr

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/contract-analyzer/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string
	Engine      string // "tesseract" (CLI) or "gosseract" (needs the gosseract build tag)

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	// MinTextChars is the native text length (runes, trimmed) below which
	// a document is treated as scanned. Zero means only empty text falls back.
	MinTextChars int
}

type ExtractedText struct {
	Text     string
	OCRUsed  bool
	Method   string // constants.MethodPDFText | constants.MethodPDFOCR
	Pages    int
	Language string
	Duration time.Duration
	Warnings []string
}

// Chars returns the rune count of the extracted text.
func (x ExtractedText) Chars() int {
	return utf8.RuneCountInString(x.Text)
}

type Extractor struct {
	cfg        Config
	runner     Runner
	textLayer  TextLayer
	recognizer PageRecognizer
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec runner used for pdftoppm and tesseract.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithTextLayer replaces the native PDF text reader.
func WithTextLayer(t TextLayer) Option {
	return func(e *Extractor) {
		if t != nil {
			e.textLayer = t
		}
	}
}

// WithRecognizer replaces the per-page OCR engine.
func WithRecognizer(r PageRecognizer) Option {
	return func(e *Extractor) {
		if r != nil {
			e.recognizer = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars < 0 {
		cfg.MinTextChars = 0
	}
	e := &Extractor{cfg: cfg, runner: cliRunner{logger: logger}, textLayer: pdfTextLayer{}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	if e.recognizer == nil {
		e.recognizer = newRecognizer(cfg, e.runner, logger)
	}
	return e
}

// Close releases the OCR engine when it holds native resources.
func (e *Extractor) Close() error {
	if c, ok := e.recognizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Extract reads the native text layer of a PDF and falls back to OCR when the
// layer holds fewer than MinTextChars runes.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (ExtractedText, error) {
	start := time.Now()
	if len(data) == 0 {
		e.logger.Error("ocr.extract.empty", "file", name)
		return ExtractedText{}, &ExtractionError{File: name, Stage: "read", Reason: "empty upload"}
	}

	res := ExtractedText{Method: constants.MethodPDFText, Language: e.cfg.TesseractLang}
	if n, err := CountPages(data); err == nil {
		res.Pages = n
	} else {
		res.Warnings = append(res.Warnings, "page count: "+err.Error())
	}

	pages, err := e.textLayer.PageTexts(data)
	if err != nil {
		e.logger.Warn("ocr.native.failed", "file", name, "error", err)
		res.Warnings = append(res.Warnings, "native text: "+err.Error())
	}
	native := Normalize(strings.Join(pages, "\n\n"))
	if res.Pages == 0 {
		res.Pages = len(pages)
	}
	nativeChars := utf8.RuneCountInString(native)

	if native != "" && nativeChars >= e.cfg.MinTextChars {
		res.Text = native
		res.Duration = time.Since(start)
		e.logger.Info("ocr.extract.ok",
			"file", name,
			"method", res.Method,
			"pages", res.Pages,
			"chars", nativeChars,
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		return res, nil
	}

	e.logger.Info("ocr.fallback.start",
		"file", name,
		"native_chars", nativeChars,
		"min_chars", e.cfg.MinTextChars,
	)
	ocrText, ocrPages, warns, ocrErr := e.pdfToOCR(ctx, data)
	res.Warnings = append(res.Warnings, warns...)
	ocrText = Normalize(ocrText)

	switch {
	case ocrErr == nil && ocrText != "":
		res.Text = ocrText
		res.OCRUsed = true
		res.Method = constants.MethodPDFOCR
		if ocrPages > 0 {
			res.Pages = ocrPages
		}
	case native != "":
		// OCR gave nothing better; keep the short native layer.
		if ocrErr != nil {
			res.Warnings = append(res.Warnings, "ocr: "+ocrErr.Error())
		}
		res.Text = native
	default:
		res.Duration = time.Since(start)
		xerr := &ExtractionError{File: name, Stage: "ocr", Reason: "no text extracted from any page", Warnings: res.Warnings, Err: ocrErr}
		e.logger.Error("ocr.extract.failed",
			"file", name,
			"error", xerr,
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		return res, xerr
	}

	res.Duration = time.Since(start)
	e.logger.Info("ocr.extract.ok",
		"file", name,
		"method", res.Method,
		"pages", res.Pages,
		"chars", res.Chars(),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
