package merge

import (
	"encoding/json"
	"regexp"

	"github.com/kestrelcase/intakex/internal/model"
)

var (
	ssnRe   = regexp.MustCompile(`\d{3}[- ]?\d{2}[- ]?\d{4}`)
	phoneRe = regexp.MustCompile(`\b(?:\(\d{3}\)\s?|\d{3}[-.\s])\d{3}[-.\s]\d{4}\b`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// Redact walks every string value in a merged record and masks SSN-shaped,
// phone-shaped, and email-shaped substrings, in that order: SSNs first, then
// phone numbers, then emails. Redact is
// idempotent: the mask tokens themselves never match any of the three
// patterns, so a second pass is a no-op.
//
// The record is round-tripped through JSON first so struct-typed fields
// (e.g. transcript citations) are walked as a generic tree rather than
// skipped as opaque Go values.
func Redact(record model.MergedRecord) (model.MergedRecord, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}

	out := make(model.MergedRecord, len(generic))
	for k, v := range generic {
		out[k] = redactValue(v)
	}
	return out, nil
}

func redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return redactString(val)
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, vv := range val {
			m[k] = redactValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, vv := range val {
			s[i] = redactValue(vv)
		}
		return s
	default:
		return v
	}
}

func redactString(s string) string {
	s = ssnRe.ReplaceAllString(s, "***-**-****")
	s = phoneRe.ReplaceAllString(s, "***-***-****")
	s = emailRe.ReplaceAllString(s, "***@***.***")
	return s
}
