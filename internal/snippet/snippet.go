// Package snippet selects a bounded, keyword-windowed excerpt of OCR text to
// send to the remote extractor, minimizing tokens while keeping the
// passages most likely to carry extractable fields.
package snippet

import (
	"strings"
	"unicode/utf8"

	"github.com/kestrelcase/intakex/internal/model"
)

// Config bounds snippet size.
type Config struct {
	MaxLines int // max_snippet_lines
	MaxChars int // max_chars_per_snippet
}

// Select splits text into trimmed lines and, for every line containing a
// keyword for dt, appends the window [i-2, i+2] (clamped, skipping empty
// lines), until MaxLines non-empty lines have accumulated. If no line
// matches, it falls back to the first MaxLines non-empty lines. The result
// is truncated to MaxChars bytes, UTF-8 safe, dropping a trailing partial
// line when the cut keeps at least one whole line before it.
func Select(text string, dt model.DocType, keywords []string, cfg Config) string {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, len(rawLines))
	for i, l := range rawLines {
		lines[i] = strings.TrimSpace(l)
	}

	lowerKeywords := make([]string, len(keywords))
	for i, k := range keywords {
		lowerKeywords[i] = strings.ToLower(k)
	}

	var picked []string
	seen := make(map[int]bool)

	// addWindow appends the non-empty, not-yet-seen lines of [i-2, i+2]
	// (clamped to document bounds) to picked.
	addWindow := func(i int) {
		lo, hi := i-2, i+2
		if lo < 0 {
			lo = 0
		}
		if hi >= len(lines) {
			hi = len(lines) - 1
		}
		for j := lo; j <= hi && len(picked) < cfg.MaxLines; j++ {
			if seen[j] || lines[j] == "" {
				continue
			}
			seen[j] = true
			picked = append(picked, lines[j])
		}
	}

	for i, line := range lines {
		if len(picked) >= cfg.MaxLines {
			break
		}
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range lowerKeywords {
			if kw != "" && strings.Contains(lower, kw) {
				addWindow(i)
				break
			}
		}
	}

	if len(picked) == 0 {
		for _, line := range lines {
			if line == "" {
				continue
			}
			picked = append(picked, line)
			if len(picked) >= cfg.MaxLines {
				break
			}
		}
	}

	joined := strings.Join(picked, "\n")
	return truncateUTF8(joined, cfg.MaxChars)
}

// truncateUTF8 truncates s to at most max bytes, never splitting a UTF-8
// rune, and drops a trailing partial line back to the last newline in the
// cut. If the cut contains no newline, the partial first line is kept.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	// Back off until we're not mid-rune.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	// Drop a trailing partial line: if the cut point isn't at a line
	// boundary in the original string, drop back to the last newline.
	if max < len(s) {
		if idx := strings.LastIndexByte(cut, '\n'); idx >= 0 && s[len(cut)] != '\n' {
			cut = cut[:idx]
		}
	}
	return cut
}
