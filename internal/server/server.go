package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

// BatchProcessor runs uploaded documents sequentially; *pipeline.Processor satisfies it.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, docs []pipeline.Document, opts pipeline.Options) results.BatchReport
}

// ResultStore reads stored result files; *results.Persister satisfies it.
type ResultStore interface {
	List() ([]results.FileInfo, error)
	Read(name string) ([]byte, error)
	LoadBatch(nameOrPath string) (results.BatchReport, error)
}

// Exporter renders a batch report as a spreadsheet; *export.Service satisfies it.
type Exporter interface {
	Batch(rep results.BatchReport, format string) ([]byte, string, error)
}

type Config struct {
	Port            int
	MaxUploadMB     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LLMConfigured   bool
	Version         string
}

type Server struct {
	cfg      Config
	proc     BatchProcessor
	store    ResultStore
	exporter Exporter
	logger   *slog.Logger

	tmpl *template.Template
	md   goldmark.Markdown
	mux  *http.ServeMux
}

func New(cfg Config, proc BatchProcessor, store ResultStore, exporter Exporter, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = constants.DefaultPort
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = constants.DefaultMaxUpload
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:      cfg,
		proc:     proc,
		store:    store,
		exporter: exporter,
		logger:   logger,
		md:       goldmark.New(),
	}
	tmpl, err := parseTemplates(s.markdown)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.tmpl = tmpl
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /results", s.handleListResults)
	s.mux.HandleFunc("GET /results/{name}", s.handleGetResult)
	s.mux.HandleFunc("GET /exports/{batch}/{format}", s.handleExport)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the UI handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.cfg.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server.listen", "addr", srv.Addr, "llm_configured", s.cfg.LLMConfigured)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server.listen.failed", "addr", srv.Addr, "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("server.shutdown")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
