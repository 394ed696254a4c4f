package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

func sampleRecord() Record {
	return Record{
		FileName:   "Wartungsvertrag 2025.pdf",
		AnalyzedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Method:     "pdf-text",
		Pages:      4,
		CharsTotal: 12000,
		CharsSent:  3500,
		Analysis: llm.ContractAnalysis{
			Summary:      "Maintenance of HVAC systems.",
			ClientName:   "ACME GmbH",
			ContractType: "Service Agreement",
			StartDate:    "1 January 2025",
			KeyDates:     []llm.KeyDate{{Label: "Notice deadline", Date: "30 September 2025"}},
			ProductsServices: []llm.Product{
				{Name: "Inspection", Quantity: "4", Unit: "visits", Rate: "450 EUR", Description: "Quarterly"},
			},
			KeyClauses: []llm.Clause{{Type: "Termination", Description: "Three months notice", Quote: "terminated with three months notice"}},
			RiskAreas:  []llm.Risk{{Concern: "Auto renewal", Quote: "renews automatically"}},
		},
	}
}

func TestPersister_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	p := NewPersister(dir, nil)

	path, err := p.Save(sampleRecord())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "result_Wartungsvertrag_2025_20250314_092653.txt"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	for _, want := range []string{
		"Contract Analysis: Wartungsvertrag 2025.pdf",
		"== Summary ==\nMaintenance of HVAC systems.",
		"Client: ACME GmbH",
		"End Date: Not specified",
		"- Notice deadline: 30 September 2025",
		"- Inspection | 4 visits | 450 EUR",
		"1. [Termination] Three months notice",
		`Quote: "terminated with three months notice"`,
		"1. Auto renewal",
	} {
		assert.Contains(t, content, want)
	}
}

func TestPersister_SaveOverwritesSameName(t *testing.T) {
	p := NewPersister(t.TempDir(), nil)
	r := sampleRecord()

	first, err := p.Save(r)
	require.NoError(t, err)
	r.Analysis.Summary = "Second run"
	second, err := p.Save(r)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	b, _ := os.ReadFile(second)
	assert.Contains(t, string(b), "Second run")
}

func TestPersister_SaveDefaultsTimestamp(t *testing.T) {
	p := NewPersister(t.TempDir(), nil)
	p.now = func() time.Time { return time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC) }
	r := sampleRecord()
	r.AnalyzedAt = time.Time{}

	path, err := p.Save(r)

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_20241201_080000.txt"))
}

func TestPersister_BatchRoundTrip(t *testing.T) {
	p := NewPersister(t.TempDir(), nil)
	a := sampleRecord().Analysis
	rep := BatchReport{
		ID:        "b-1",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Processed: 1,
		Failed:    1,
		Outcomes: []Outcome{
			{FileName: "a.pdf", Status: "success", Analysis: &a},
			{FileName: "b.pdf", Status: "failed", Error: "llm request failed"},
		},
	}

	path, err := p.SaveBatch(rep)
	require.NoError(t, err)
	assert.Equal(t, "bulk_analysis_results_20250102_030405.json", filepath.Base(path))

	byName, err := p.LoadBatch(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, "b-1", byName.ID)
	assert.Len(t, byName.Outcomes, 2)
	assert.Equal(t, "ACME GmbH", byName.Outcomes[0].Analysis.ClientName)
	assert.Equal(t, filepath.Base(path), byName.File)

	byPath, err := p.LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byPath.ID)
}

func TestPersister_LoadBatchErrors(t *testing.T) {
	p := NewPersister(t.TempDir(), nil)

	_, err := p.LoadBatch("bulk_analysis_results_20250102_030405.json")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = p.LoadBatch("result_x_20250102_030405.txt")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestPersister_ListAndRead(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir, nil)
	path, err := p.Save(sampleRecord())
	require.NoError(t, err)
	_, err = p.SaveBatch(BatchReport{ID: "x", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	files, err := p.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	kinds := map[string]bool{}
	for _, f := range files {
		kinds[f.Kind] = true
	}
	assert.True(t, kinds["result"])
	assert.True(t, kinds["batch"])

	b, err := p.Read(filepath.Base(path))
	require.NoError(t, err)
	assert.Contains(t, string(b), "ACME GmbH")
}

func TestPersister_ListMissingDir(t *testing.T) {
	p := NewPersister(filepath.Join(t.TempDir(), "nope"), nil)

	files, err := p.List()

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPersister_ReadRejectsTraversal(t *testing.T) {
	p := NewPersister(t.TempDir(), nil)

	for _, name := range []string{"../secret.txt", "/etc/passwd", "result_..x_20250101_000000.txt", "notes.md", ""} {
		_, err := p.Read(name)
		assert.ErrorIs(t, err, common.ErrInvalidInput, name)
	}
	_, err := p.Read("result_missing_20250101_000000.txt")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"contract.pdf":              "contract",
		"My Contract (final).PDF":   "My_Contract_final",
		"../../etc/passwd":          "passwd",
		`C:\Users\me\lease.pdf`:     "lease",
		"...pdf":                    "document",
		"":                          "document",
		"Vertrag_Müller.pdf":        "Vertrag_M_ller",
		strings.Repeat("a", 200):    strings.Repeat("a", 80),
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), in)
	}
}
