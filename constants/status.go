package constants

// DocumentStatus is the outcome of one document in a batch.
type DocumentStatus string

const (
	StatusSuccess DocumentStatus = "success"
	StatusFailed  DocumentStatus = "failed"
)

// Extraction methods reported by the extractor.
const (
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"
)
