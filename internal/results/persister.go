package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
)

const (
	resultPrefix = "result_"
	batchPrefix  = "bulk_analysis_results_"
	stampLayout  = "20060102_150405"
)

var (
	reUnsafe     = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	reStoredName = regexp.MustCompile(`^(result_[A-Za-z0-9._-]+\.txt|bulk_analysis_results_\d{8}_\d{6}\.json)$`)
)

// Persister writes result files into a flat directory.
type Persister struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func NewPersister(dir string, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "results"
	}
	return &Persister{dir: dir, now: time.Now, logger: logger}
}

func (p *Persister) Dir() string { return p.dir }

// Save writes the rendered record to result_<name>_<timestamp>.txt and returns its path.
// An existing file with the same name is overwritten.
func (p *Persister) Save(r Record) (string, error) {
	if r.AnalyzedAt.IsZero() {
		r.AnalyzedAt = p.now()
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	name := resultPrefix + SafeName(r.FileName) + "_" + r.AnalyzedAt.Format(stampLayout) + ".txt"
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, []byte(RenderText(r)), 0o644); err != nil {
		p.logger.Error("results.save.failed", "path", path, "error", err)
		return "", fmt.Errorf("write result: %w", err)
	}
	p.logger.Info("results.save.ok", "path", path, "file", r.FileName)
	return path, nil
}

// SaveBatch writes the batch report as indented JSON and returns its path.
func (p *Persister) SaveBatch(rep BatchReport) (string, error) {
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = p.now()
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode batch report: %w", err)
	}
	path := filepath.Join(p.dir, batchPrefix+rep.CreatedAt.Format(stampLayout)+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write batch report: %w", err)
	}
	p.logger.Info("results.batch.ok", "path", path, "documents", len(rep.Outcomes), "failed", rep.Failed)
	return path, nil
}

// LoadBatch reads a batch report by file name or by path.
func (p *Persister) LoadBatch(nameOrPath string) (BatchReport, error) {
	path := nameOrPath
	if filepath.Base(nameOrPath) == nameOrPath {
		if !strings.HasPrefix(nameOrPath, batchPrefix) || !ValidName(nameOrPath) {
			return BatchReport{}, common.NewAppError("INVALID_NAME", "not a batch report: "+nameOrPath, common.ErrInvalidInput)
		}
		path = filepath.Join(p.dir, nameOrPath)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return BatchReport{}, common.NewAppError("NOT_FOUND", "batch report "+nameOrPath, common.ErrNotFound)
		}
		return BatchReport{}, fmt.Errorf("read batch report: %w", err)
	}
	var rep BatchReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return BatchReport{}, fmt.Errorf("decode batch report: %w", err)
	}
	rep.File = filepath.Base(path)
	return rep, nil
}

// List returns stored files, newest first. A missing directory yields an empty list.
func (p *Persister) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !ValidName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		kind := "result"
		if strings.HasPrefix(e.Name(), batchPrefix) {
			kind = "batch"
		}
		out = append(out, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime(), Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Name > out[j].Name
		}
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// Read returns the content of a stored file.
func (p *Persister) Read(name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, common.NewAppError("INVALID_NAME", "invalid result name: "+name, common.ErrInvalidInput)
	}
	b, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewAppError("NOT_FOUND", "result "+name, common.ErrNotFound)
		}
		return nil, fmt.Errorf("read result: %w", err)
	}
	return b, nil
}

// ValidName accepts only names this package writes; rejects anything path-like.
func ValidName(name string) bool {
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return false
	}
	return reStoredName.MatchString(name)
}

// SafeName turns an uploaded file name into a file-system-safe stem.
func SafeName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = reUnsafe.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._-")
	for strings.Contains(base, "..") {
		base = strings.ReplaceAll(base, "..", ".")
	}
	if r := []rune(base); len(r) > 80 {
		base = string(r[:80])
	}
	if base == "" {
		base = "document"
	}
	return base
}
