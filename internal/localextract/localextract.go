// Package localextract produces regex-based candidate fields from OCR text
// before any remote call is made: a name, a date, a phone number, and for
// transcripts, line citations.
package localextract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kestrelcase/intakex/internal/model"
)

const maxCitations = 10

var (
	nameRe  = regexp.MustCompile(`(?i)(Patient|Name)\s*[:\-]\s*([A-Za-z ,.\-']{3,90})`)
	dateAny = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`)
	phoneRe = regexp.MustCompile(`\b(?:\(\d{3}\)\s?|\d{3}[-.\s])\d{3}[-.\s]\d{4}\b`)

	pageRe = regexp.MustCompile(`(?i)page\s+(\d+)`)
	lineRe = regexp.MustCompile(`(?i)lines?\s+(\d+)(?:-(\d+))?`)
)

// Extract runs the regex probes against fullText and packages the given
// snippet as important_snippets. dt controls whether transcript citation
// scanning runs.
func Extract(fullText string, dt model.DocType, snippetText string) model.LocalCandidates {
	lc := model.NewLocalCandidates()
	lc["important_snippets"] = snippetText
	lc["char_count"] = len(snippetText)

	if m := nameRe.FindStringSubmatch(fullText); len(m) == 3 {
		lc["name_candidate"] = strings.TrimSpace(m[1] + ": " + strings.TrimSpace(m[2]))
	}

	if d := firstDate(fullText); d != "" {
		lc["date_candidate"] = d
	}

	if p := phoneRe.FindString(fullText); p != "" {
		lc["phone_candidate"] = p
	}

	if dt == model.DocTranscript {
		if cites := extractCitations(fullText); len(cites) > 0 {
			lc["local_citations"] = cites
		}
	}

	return lc
}

// firstDate returns whichever date form (ISO or US-style) occurs earliest in
// text, else empty. A single alternation keeps this leftmost-match, not
// format-priority.
func firstDate(text string) string {
	return dateAny.FindString(text)
}

// extractCitations scans lines for "page N" markers (updating the current
// page) and "line[s] N[-M]" markers (emitting a citation), capped at 10,
// preserving document order.
func extractCitations(text string) []model.Citation {
	lines := strings.Split(text, "\n")
	var cites []model.Citation
	currentPage := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := pageRe.FindStringSubmatch(line); len(m) == 2 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				currentPage = n
			}
		}
		if m := lineRe.FindStringSubmatch(line); len(m) == 3 {
			cites = append(cites, model.Citation{
				Page: currentPage,
				Line: lineLabel(m[1], m[2]),
				Text: line,
			})
			if len(cites) >= maxCitations {
				break
			}
		}
	}
	return cites
}

func lineLabel(start, end string) string {
	if end == "" {
		return start
	}
	return start + "-" + end
}
