package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/contract-analyzer/constants"
)

// AllowedExt checks if a file extension is accepted for analysis (pdf only).
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
