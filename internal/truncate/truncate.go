// Package truncate caps document text before it is sent to the model.
package truncate

import (
	"unicode/utf8"

	"github.com/joseph-ayodele/contract-analyzer/constants"
)

// Truncate returns at most max runes of text. A non-positive max yields "".
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		// byte length bounds rune count
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}

// LengthInfo describes a text for truncation decisions.
type LengthInfo struct {
	Length      int  `json:"length"`
	IsShort     bool `json:"is_short"`
	Recommended int  `json:"recommended_truncate"`
}

// Info reports the rune length, whether the text is short enough to send whole,
// and the recommended cap.
func Info(text string) LengthInfo {
	n := utf8.RuneCountInString(text)
	info := LengthInfo{Length: n, IsShort: n < constants.ShortTextThreshold, Recommended: n}
	if !info.IsShort {
		info.Recommended = min(constants.RecommendedMaxChars, n)
	}
	return info
}

// Resolve picks the effective cap: an explicit positive request wins, short texts
// go whole, everything else uses the recommended cap.
func Resolve(requested int, text string) int {
	if requested > 0 {
		return requested
	}
	return Info(text).Recommended
}
