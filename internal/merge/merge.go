// Package merge overlays local candidate fields onto the model's extraction
// result and, optionally, redacts PII from the combined record.
package merge

import (
	"path/filepath"
	"strings"

	"github.com/kestrelcase/intakex/internal/model"
)

// Options controls optional merge behavior.
type Options struct {
	Audit bool
}

// Merge combines the model's result with local candidates into the final
// record emitted to sinks. A nil result is treated as an empty one.
func Merge(result model.ExtractionResult, local model.LocalCandidates, dt model.DocType, source string, pageCount int, pageTexts []string, opts Options) model.MergedRecord {
	merged := model.MergedRecord{}
	for k, v := range result {
		merged[k] = v
	}

	if _, has := merged["snippets"]; !has {
		if snip, ok := local["important_snippets"]; ok {
			merged["snippets"] = snip
		}
	}

	if name, ok := local["name_candidate"]; ok {
		_, hasPatient := merged["patient_name"]
		_, hasMember := merged["member"]
		if !hasPatient {
			merged["patient_name"] = name
		}
		if !hasMember {
			merged["member"] = name
		}
	}

	if dt == model.DocTranscript {
		if _, has := merged["citations"]; !has {
			if cites, ok := local["local_citations"]; ok {
				merged["citations"] = cites
			}
		}
	}

	merged["doc_type"] = dt.Tag()
	merged["source"] = filepath.Base(source)
	merged["page_count"] = pageCount

	if opts.Audit {
		merged["raw_ocr_preview"] = truncateRunes(strings.Join(pageTexts, "\n"), 4000)
	}

	return merged
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
