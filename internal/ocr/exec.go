package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

// stderrTail bounds how much tool output ends up in logs and errors.
const stderrTail = 2 << 10

// Runner executes pdftoppm and tesseract. Tests replace it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// cliRunner runs the poppler and tesseract binaries found on PATH or by
// absolute path.
type cliRunner struct {
	logger *slog.Logger
}

func (r cliRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	tool := filepath.Base(name)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%s is not installed: %w", tool, err)
		}
		r.logger.Warn("ocr.exec.failed",
			"tool", tool,
			"args", len(args),
			"elapsed_ms", elapsed,
			"error", err,
			"stderr", tail(stderr.Bytes(), stderrTail),
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}
	r.logger.Debug("ocr.exec.ok",
		"tool", tool,
		"elapsed_ms", elapsed,
		"stdout_bytes", stdout.Len(),
	)
	return stdout.Bytes(), stderr.Bytes(), nil
}

// tail keeps the last n bytes; both tools print the actual failure last.
func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) <= n {
		return string(b)
	}
	return "..." + string(b[len(b)-n:])
}
