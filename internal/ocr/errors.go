package ocr

import (
	"fmt"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
)

// ExtractionError is returned when neither the text layer nor OCR yields usable text.
type ExtractionError struct {
	File     string
	Stage    string // "read" | "ocr"
	Reason   string
	Warnings []string
	Err      error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extract %q: %s", e.File, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrExtraction, ErrOCR when the OCR step itself failed, and the cause.
func (e *ExtractionError) Unwrap() []error {
	errs := []error{common.ErrExtraction}
	if e.Err != nil {
		errs = append(errs, common.ErrOCR, e.Err)
	}
	return errs
}
