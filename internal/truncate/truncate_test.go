package truncate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 5, "hello"},
		{"zero", "hello", 0, ""},
		{"negative", "hello", -3, ""},
		{"empty", "", 4, ""},
		{"multibyte", "Vertragsgebühr äöü", 15, "Vertragsgebühr "},
		{"multibyte exact bytes", "äää", 2, "ää"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncate_NeverExceedsMax(t *testing.T) {
	samples := []string{
		"",
		"a",
		strings.Repeat("x", 5000),
		strings.Repeat("ü", 777),
		strings.Repeat("契約書", 333),
		"mixed ascii und umlaute äöüß " + strings.Repeat("§", 40),
	}
	for _, s := range samples {
		for limit := -1; limit <= 4100; limit += 37 {
			got := Truncate(s, limit)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), max(0, limit))
			assert.True(t, strings.HasPrefix(s, got))
		}
	}
}

func TestInfo(t *testing.T) {
	short := Info(strings.Repeat("a", 2999))
	assert.Equal(t, LengthInfo{Length: 2999, IsShort: true, Recommended: 2999}, short)

	boundary := Info(strings.Repeat("a", 3000))
	assert.False(t, boundary.IsShort)
	assert.Equal(t, 3000, boundary.Recommended)

	long := Info(strings.Repeat("ä", 9000))
	assert.Equal(t, 9000, long.Length)
	assert.Equal(t, 3500, long.Recommended)
}

func TestResolve(t *testing.T) {
	long := strings.Repeat("a", 10000)

	assert.Equal(t, 1200, Resolve(1200, long))
	assert.Equal(t, 3500, Resolve(0, long))
	assert.Equal(t, 12, Resolve(-5, "short clause"))
}
