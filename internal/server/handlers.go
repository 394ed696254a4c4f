package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

type homePage struct {
	MaxUploadMB   int
	MaxChars      string
	LLMConfigured bool
	Error         string
}

type resultsPage struct {
	Report     results.BatchReport
	BatchFile  string
	Successful int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index", homePage{
		MaxUploadMB:   s.cfg.MaxUploadMB,
		LLMConfigured: s.cfg.LLMConfigured,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB), http.StatusRequestEntityTooLarge)
			return
		}
		s.fail(w, r, "could not read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	maxCharsRaw := strings.TrimSpace(r.FormValue("max_chars"))
	maxChars := 0
	if maxCharsRaw != "" {
		n, err := strconv.Atoi(maxCharsRaw)
		if err != nil {
			s.fail(w, r, "max_chars must be a number", http.StatusBadRequest)
			return
		}
		maxChars = n
	}

	var headers []string
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			headers = append(headers, fh.Filename)
		}
	}
	v := common.NewValidator().
		Field("files", len(headers), func(field string, value any) *common.ValidationError {
			if value.(int) == 0 {
				return &common.ValidationError{Field: field, Message: "at least one PDF is required"}
			}
			return nil
		}).
		Field("max_chars", maxChars, common.NonNegative)
	for _, name := range headers {
		v.Field("files", name, func(field string, value any) *common.ValidationError {
			if !constants.IsAllowedExt(filepath.Ext(value.(string))) {
				return &common.ValidationError{Field: field, Message: fmt.Sprintf("%s is not a PDF", value)}
			}
			return nil
		})
	}
	if v.HasErrors() {
		s.fail(w, r, v.ErrorMessage(), http.StatusBadRequest)
		return
	}

	docs := make([]pipeline.Document, 0, len(headers))
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			s.fail(w, r, "could not open "+fh.Filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.fail(w, r, "could not read "+fh.Filename, http.StatusBadRequest)
			return
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(fh.Filename), Data: data})
	}

	s.logger.Info("server.upload.received", "documents", len(docs), "max_chars", maxChars)
	rep := s.proc.ProcessBatch(r.Context(), docs, pipeline.Options{MaxChars: maxChars})

	if wantsJSON(r) {
		sendJSONResponse(w, APIResponse{
			Status:  "success",
			Message: fmt.Sprintf("%d processed, %d failed", rep.Processed, rep.Failed),
			Data:    rep,
		})
		return
	}
	page := resultsPage{Report: rep, Successful: rep.Processed - rep.Failed}
	if rep.File != "" {
		page.BatchFile = filepath.Base(rep.File)
	}
	s.render(w, http.StatusOK, "results", page)
}

func (s *Server) handleListResults(w http.ResponseWriter, _ *http.Request) {
	files, err := s.store.List()
	if err != nil {
		s.logger.Error("server.results.list_failed", "error", err)
		sendJSONError(w, "could not list results", http.StatusInternalServerError)
		return
	}
	sendJSONResponse(w, APIResponse{Status: "success", Data: files})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	b, err := s.store.Read(name)
	if err != nil {
		sendJSONError(w, err.Error(), common.HTTPStatus(err))
		return
	}
	ct := "text/plain; charset=utf-8"
	if strings.HasSuffix(name, ".json") {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	_, _ = w.Write(b)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	batch, format := r.PathValue("batch"), strings.ToLower(r.PathValue("format"))
	rep, err := s.store.LoadBatch(batch)
	if err != nil {
		sendJSONError(w, err.Error(), common.HTTPStatus(err))
		return
	}
	b, contentType, err := s.exporter.Batch(rep, format)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSuffix(batch, filepath.Ext(batch)) + "." + format
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSONResponse(w, APIResponse{
		Status: "success",
		Data: map[string]any{
			"status":         "healthy",
			"llm_configured": s.cfg.LLMConfigured,
			"version":        s.cfg.Version,
			"timestamp":      time.Now().Format(time.RFC3339),
		},
	})
}

// fail reports a request error as JSON or by re-rendering the upload form.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, code int) {
	s.logger.Warn("server.request.rejected", "path", r.URL.Path, "status", code, "reason", msg)
	if wantsJSON(r) {
		sendJSONError(w, msg, code)
		return
	}
	s.render(w, code, "index", homePage{
		MaxUploadMB:   s.cfg.MaxUploadMB,
		MaxChars:      r.FormValue("max_chars"),
		LLMConfigured: s.cfg.LLMConfigured,
		Error:         msg,
	})
}
