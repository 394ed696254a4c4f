package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-analyzer/internal/export"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

type fakeProcessor struct {
	store *results.Persister
	docs  []pipeline.Document
	opts  pipeline.Options
}

func (f *fakeProcessor) ProcessBatch(_ context.Context, docs []pipeline.Document, opts pipeline.Options) results.BatchReport {
	f.docs, f.opts = docs, opts
	rep := results.BatchReport{ID: "batch-1"}
	for _, d := range docs {
		rep.Processed++
		if strings.HasPrefix(d.Name, "bad") {
			rep.Failed++
			rep.Outcomes = append(rep.Outcomes, results.Outcome{FileName: d.Name, Status: "failed", Error: "no text could be extracted"})
			continue
		}
		a := llm.ContractAnalysis{Summary: "A **binding** lease", ClientName: "ACME GmbH"}
		path, _ := f.store.Save(results.Record{FileName: d.Name, Analysis: a})
		rep.Outcomes = append(rep.Outcomes, results.Outcome{FileName: d.Name, Status: "success", Analysis: &a, ResultFile: path})
	}
	rep.File, _ = f.store.SaveBatch(rep)
	return rep
}

func newTestServer(t *testing.T) (*Server, *fakeProcessor, *results.Persister) {
	t.Helper()
	store := results.NewPersister(t.TempDir(), nil)
	proc := &fakeProcessor{store: store}
	s, err := New(Config{MaxUploadMB: 5}, proc, store, export.NewService(nil), nil)
	require.NoError(t, err)
	return s, proc, store
}

func multipartBody(t *testing.T, fields map[string]string, files ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="files"`)
	assert.Contains(t, rec.Body.String(), "AZURE_OPENAI_API_KEY")

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze_JSON(t *testing.T) {
	s, proc, _ := newTestServer(t)
	body, ct := multipartBody(t, map[string]string{"max_chars": "1500"}, "lease.pdf", "bad-scan.pdf")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "application/json")

	rec := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, proc.docs, 2)
	assert.Equal(t, "lease.pdf", proc.docs[0].Name)
	assert.Equal(t, 1500, proc.opts.MaxChars)

	var resp struct {
		Status string              `json:"status"`
		Data   results.BatchReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.Data.Processed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestAnalyze_HTML(t *testing.T) {
	s, _, _ := newTestServer(t)
	body, ct := multipartBody(t, nil, "lease.pdf", "bad-scan.pdf")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)

	rec := do(t, s.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(t, html, "<strong>binding</strong>")
	assert.Contains(t, html, "ACME GmbH")
	assert.Contains(t, html, "no text could be extracted")
	assert.Contains(t, html, "/exports/bulk_analysis_results_")
}

func TestAnalyze_Rejects(t *testing.T) {
	s, proc, _ := newTestServer(t)

	cases := []struct {
		name   string
		fields map[string]string
		files  []string
		want   string
	}{
		{"no files", nil, nil, "at least one PDF"},
		{"not a pdf", nil, []string{"contract.docx"}, "not a PDF"},
		{"bad max_chars", map[string]string{"max_chars": "lots"}, []string{"a.pdf"}, "max_chars"},
		{"negative max_chars", map[string]string{"max_chars": "-5"}, []string{"a.pdf"}, "max_chars"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.fields, tc.files...)
			req := httptest.NewRequest(http.MethodPost, "/analyze", body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("Accept", "application/json")

			rec := do(t, s.Handler(), req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
	assert.Empty(t, proc.docs)
}

func TestAnalyze_RejectHTMLRerendersForm(t *testing.T) {
	s, _, _ := newTestServer(t)
	body, ct := multipartBody(t, nil, "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)

	rec := do(t, s.Handler(), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)
	assert.Contains(t, rec.Body.String(), `name="files"`)
}

func TestResultsRoutes(t *testing.T) {
	s, _, store := newTestServer(t)
	path, err := store.Save(results.Record{FileName: "lease.pdf", Analysis: llm.ContractAnalysis{Summary: "Office lease"}})
	require.NoError(t, err)
	name := filepath.Base(path)

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), name)

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/results/"+name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Office lease")
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/results/"+name+"?download=1", nil))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/results/passwd", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/results/result_missing_20250101_000000.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportRoutes(t *testing.T) {
	s, _, store := newTestServer(t)
	a := llm.ContractAnalysis{Summary: "Lease", ProductsServices: []llm.Product{{Name: "Office", Rate: "900 EUR"}}}
	path, err := store.SaveBatch(results.BatchReport{ID: "b", Processed: 1, Outcomes: []results.Outcome{{FileName: "lease.pdf", Status: "success", Analysis: &a}}})
	require.NoError(t, err)
	batch := filepath.Base(path)

	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/exports/"+batch+"/csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "900 EUR")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/exports/"+batch+"/xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/exports/"+batch+"/pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/exports/bulk_analysis_results_20200101_000000.json/csv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.cfg.Port = 0
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-errCh)
}
