package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
	"github.com/joseph-ayodele/contract-analyzer/internal/ocr"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

type fakeExtractor struct {
	texts map[string]string
	fail  map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, name string, _ []byte) (ocr.ExtractedText, error) {
	if err := f.fail[name]; err != nil {
		return ocr.ExtractedText{}, err
	}
	return ocr.ExtractedText{Text: f.texts[name], Method: constants.MethodPDFText, Pages: 1}, nil
}

type fakeAnalyzer struct {
	failOn map[string]bool
	seen   []llm.AnalyzeRequest
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req llm.AnalyzeRequest) (llm.ContractAnalysis, []byte, error) {
	f.seen = append(f.seen, req)
	if f.failOn[req.FileName] {
		return llm.ContractAnalysis{}, nil, fmt.Errorf("%w: endpoint returned status 500", common.ErrLLM)
	}
	return llm.ContractAnalysis{Summary: "summary of " + req.FileName}, []byte(`{}`), nil
}

func newTestProcessor(t *testing.T, ex TextExtractor, an llm.Analyzer, opts ...Option) (*Processor, *results.Persister) {
	t.Helper()
	w := results.NewPersister(t.TempDir(), nil)
	return NewProcessor(ex, an, w, nil, opts...), w
}

func TestProcessDocument_Success(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "The parties agree to the following terms."}}
	an := &fakeAnalyzer{}
	p, _ := newTestProcessor(t, ex, an)

	out, err := p.ProcessDocument(context.Background(), Document{Name: "a.pdf", Data: []byte("%PDF")}, Options{})

	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	assert.NotEmpty(t, out.RequestID)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, "summary of a.pdf", out.Analysis.Summary)
	assert.FileExists(t, out.ResultFile)
	b, err := os.ReadFile(out.ResultFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "summary of a.pdf")
}

func TestProcessDocument_TruncatesToMax(t *testing.T) {
	long := strings.Repeat("ä", 10_000)
	ex := &fakeExtractor{texts: map[string]string{"long.pdf": long}}
	an := &fakeAnalyzer{}
	p, _ := newTestProcessor(t, ex, an)

	out, err := p.ProcessDocument(context.Background(), Document{Name: "long.pdf"}, Options{MaxChars: 1200})
	require.NoError(t, err)

	require.Len(t, an.seen, 1)
	assert.Equal(t, 1200, len([]rune(an.seen[0].Text)))
	assert.Equal(t, 10_000, out.CharsTotal)
	assert.Equal(t, 1200, out.CharsSent)
}

func TestProcessDocument_AutomaticCap(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{
		"short.pdf": strings.Repeat("x", 2000),
		"long.pdf":  strings.Repeat("x", 9000),
	}}
	an := &fakeAnalyzer{}
	p, _ := newTestProcessor(t, ex, an)

	_, err := p.ProcessDocument(context.Background(), Document{Name: "short.pdf"}, Options{})
	require.NoError(t, err)
	_, err = p.ProcessDocument(context.Background(), Document{Name: "long.pdf"}, Options{})
	require.NoError(t, err)

	assert.Len(t, an.seen[0].Text, 2000)
	assert.Len(t, an.seen[1].Text, constants.RecommendedMaxChars)
}

func TestProcessDocument_DefaultMaxChars(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": strings.Repeat("x", 500)}}
	an := &fakeAnalyzer{}
	p, _ := newTestProcessor(t, ex, an, WithDefaultMaxChars(100))

	_, err := p.ProcessDocument(context.Background(), Document{Name: "a.pdf"}, Options{})
	require.NoError(t, err)
	assert.Len(t, an.seen[0].Text, 100)

	_, err = p.ProcessDocument(context.Background(), Document{Name: "a.pdf"}, Options{MaxChars: 300})
	require.NoError(t, err)
	assert.Len(t, an.seen[1].Text, 300)
}

func TestProcessDocument_ExtractionFailureSkipsAnalysis(t *testing.T) {
	exErr := &ocr.ExtractionError{File: "scan.pdf", Stage: "ocr", Reason: "no text could be extracted"}
	ex := &fakeExtractor{fail: map[string]error{"scan.pdf": exErr}}
	an := &fakeAnalyzer{}
	p, w := newTestProcessor(t, ex, an)

	out, err := p.ProcessDocument(context.Background(), Document{Name: "scan.pdf"}, Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.Equal(t, "failed", out.Status)
	assert.Empty(t, an.seen)
	files, err := w.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestProcessBatch_FailureDoesNotStopLaterDocuments(t *testing.T) {
	ex := &fakeExtractor{
		texts: map[string]string{"one.pdf": "first", "two.pdf": "second", "three.pdf": "third"},
	}
	an := &fakeAnalyzer{failOn: map[string]bool{"two.pdf": true}}
	p, w := newTestProcessor(t, ex, an)

	rep := p.ProcessBatch(context.Background(), []Document{
		{Name: "one.pdf"}, {Name: "two.pdf"}, {Name: "three.pdf"},
	}, Options{})

	assert.Equal(t, 3, rep.Processed)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Outcomes, 3)
	assert.Equal(t, "success", rep.Outcomes[0].Status)
	assert.Equal(t, "failed", rep.Outcomes[1].Status)
	assert.Contains(t, rep.Outcomes[1].Error, "status 500")
	assert.Equal(t, "success", rep.Outcomes[2].Status)

	// analyzed in order, one call each
	require.Len(t, an.seen, 3)
	assert.Equal(t, "three.pdf", an.seen[2].FileName)

	// one result file per success plus the batch report
	files, err := w.List()
	require.NoError(t, err)
	var resultsN, batchN int
	for _, f := range files {
		switch f.Kind {
		case "result":
			resultsN++
		case "batch":
			batchN++
		}
	}
	assert.Equal(t, 2, resultsN)
	assert.Equal(t, 1, batchN)
	assert.NotEmpty(t, rep.File)

	loaded, err := w.LoadBatch(rep.File)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, loaded.ID)
}

func TestProcessBatch_UnreadableDocumentIsSaved(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "a"}}
	an := &fakeAnalyzer{}
	p, w := newTestProcessor(t, ex, an)
	readErr := fmt.Errorf("open gone.pdf: %w", os.ErrNotExist)

	rep := p.ProcessBatch(context.Background(), []Document{
		{Name: "gone.pdf", ReadErr: readErr}, {Name: "a.pdf"},
	}, Options{})

	assert.Equal(t, 2, rep.Processed)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, an.seen, 1)
	assert.Equal(t, "a.pdf", an.seen[0].FileName)

	loaded, err := w.LoadBatch(rep.File)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Processed)
	assert.Equal(t, 1, loaded.Failed)
	require.Len(t, loaded.Outcomes, 2)
	assert.Equal(t, "failed", loaded.Outcomes[0].Status)
	assert.Contains(t, loaded.Outcomes[0].Error, "open gone.pdf")
}

func TestProcessBatch_AllUnreadableStillSaved(t *testing.T) {
	p, w := newTestProcessor(t, &fakeExtractor{}, &fakeAnalyzer{})

	rep := p.ProcessBatch(context.Background(), []Document{
		{Name: "x.pdf", ReadErr: errors.New("permission denied")},
	}, Options{})

	require.NotEmpty(t, rep.File)
	loaded, err := w.LoadBatch(rep.File)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Failed)
}

func TestProcessBatch_DistinctRequestIDs(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "a", "b.pdf": "b"}}
	p, _ := newTestProcessor(t, ex, &fakeAnalyzer{})

	rep := p.ProcessBatch(context.Background(), []Document{{Name: "a.pdf"}, {Name: "b.pdf"}}, Options{})

	require.Len(t, rep.Outcomes, 2)
	assert.NotEqual(t, rep.Outcomes[0].RequestID, rep.Outcomes[1].RequestID)
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "a"}}
	an := &fakeAnalyzer{}
	p, _ := newTestProcessor(t, ex, an)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := p.ProcessBatch(ctx, []Document{{Name: "a.pdf"}}, Options{})

	assert.Zero(t, rep.Processed)
	assert.Empty(t, an.seen)
	assert.Empty(t, rep.File)
}

type failingWriter struct{}

func (failingWriter) Save(results.Record) (string, error) { return "", errors.New("disk full") }
func (failingWriter) SaveBatch(results.BatchReport) (string, error) {
	return "", errors.New("disk full")
}

func TestProcessDocument_SaveFailureFailsDocument(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "a"}}
	p := NewProcessor(ex, &fakeAnalyzer{}, failingWriter{}, nil)

	out, err := p.ProcessDocument(context.Background(), Document{Name: "a.pdf"}, Options{})

	require.Error(t, err)
	assert.Equal(t, "failed", out.Status)
	assert.Contains(t, out.Error, "disk full")
}
