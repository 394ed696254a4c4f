package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// ListPDFs walks root and returns PDF paths in lexical order, skipping hidden
// entries if requested. A root that is itself a PDF file yields just that file.
func ListPDFs(root string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		stats.Scanned = 1
		if !AllowedExt(filepath.Ext(root)) {
			return nil, stats, fmt.Errorf("not a pdf: %s", root)
		}
		stats.Matched = 1
		return []string{root}, stats, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, stats, nil
}

// File is a PDF read from disk.
type File struct {
	Path    string
	Name    string
	Data    []byte
	HashHex string
}

// ReadFile loads a PDF and hashes its content.
func ReadFile(path string) (File, error) {
	if !AllowedExt(filepath.Ext(path)) {
		return File{}, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	sum := sha256.Sum256(data)
	return File{
		Path:    path,
		Name:    filepath.Base(path),
		Data:    data,
		HashHex: hex.EncodeToString(sum[:]),
	}, nil
}

// Dedup remembers content hashes of analyzed files so repeated watcher events
// for one file are analyzed once. A hash is recorded only after success, so a
// file that failed is tried again when it shows up again.
type Dedup struct {
	mu   sync.Mutex
	done map[string]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{done: map[string]struct{}{}}
}

// Seen reports whether hash was marked done.
func (d *Dedup) Seen(hash string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.done[hash]
	return ok
}

// Mark records hash as done.
func (d *Dedup) Mark(hash string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.done[hash] = struct{}{}
}
