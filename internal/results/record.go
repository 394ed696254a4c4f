package results

import (
	"time"

	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

// Record is everything written to one result file.
type Record struct {
	FileName   string               `json:"file_name"`
	AnalyzedAt time.Time            `json:"analyzed_at"`
	Method     string               `json:"method"`
	OCRUsed    bool                 `json:"ocr_used"`
	Pages      int                  `json:"pages"`
	CharsTotal int                  `json:"chars_total"`
	CharsSent  int                  `json:"chars_sent"`
	RequestID  string               `json:"request_id,omitempty"`
	Analysis   llm.ContractAnalysis `json:"analysis"`
}

// FileInfo describes a stored result file.
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Kind    string    `json:"kind"` // "result" | "batch"
}

// Outcome is the result of one document in a batch.
type Outcome struct {
	FileName   string                `json:"file_name"`
	Status     string                `json:"status"`
	Method     string                `json:"method,omitempty"`
	OCRUsed    bool                  `json:"ocr_used"`
	Pages      int                   `json:"pages,omitempty"`
	CharsTotal int                   `json:"chars_total,omitempty"`
	CharsSent  int                   `json:"chars_sent,omitempty"`
	Warnings   []string              `json:"warnings,omitempty"`
	Analysis   *llm.ContractAnalysis `json:"analysis,omitempty"`
	ResultFile string                `json:"result_file,omitempty"`
	Error      string                `json:"error,omitempty"`
	RequestID  string                `json:"request_id,omitempty"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
}

// BatchReport is written once per batch as JSON.
type BatchReport struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
	File      string    `json:"-"`
}
