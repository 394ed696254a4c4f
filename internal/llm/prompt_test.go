package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt(AnalyzeRequest{Text: "  This Service Agreement ...  ", FileName: "msa.pdf"})

	assert.Contains(t, p, `"key_clauses"`)
	assert.Contains(t, p, `"risk_areas"`)
	assert.Contains(t, p, `"key_dates"`)
	assert.Contains(t, p, "File name: msa.pdf")
	assert.True(t, strings.HasSuffix(p, "Contract Text:\nThis Service Agreement ..."))
}

func TestBuildUserPrompt_NoFileName(t *testing.T) {
	p := BuildUserPrompt(AnalyzeRequest{Text: "text"})

	assert.NotContains(t, p, "File name:")
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt()

	assert.Contains(t, p, "legal assistant")
	assert.Contains(t, p, "JSON")
}
