// Package classify assigns a coarse DocType to OCR'd text via lexical
// keyword scoring.
package classify

import (
	"strings"

	"github.com/kestrelcase/intakex/internal/model"
)

// order is the fixed tie-break order: first type with the highest score wins.
var order = []model.DocType{
	model.DocMedical,
	model.DocPleading,
	model.DocPolice,
	model.DocTranscript,
	model.DocEOB,
	model.DocImaging,
}

var vocab = map[model.DocType][]string{
	model.DocMedical: {
		"diagnosis", "treatment", "medication", "mrn", "cpt", "icd",
		"history of present illness", "patient", "physician", "hospital",
	},
	model.DocPleading: {
		"plaintiff", "defendant", "index no", "caption", "complaint",
		"cause of action", "relief sought", "court", "summons",
	},
	model.DocPolice: {
		"incident report", "officer", "violation", "dispatch", "precinct",
		"report number", "accident report", "responding officer",
	},
	model.DocTranscript: {
		"q:", "a:", "deposition", "witness", "transcript", "examination by",
		"court reporter", "sworn",
	},
	model.DocEOB: {
		"explanation of benefits", "claim number", "allowed amount",
		"denied amount", "payer", "member id", "adjustment", "copay",
	},
	model.DocImaging: {
		"impression", "findings", "radiograph", "mri", "ct scan",
		"study date", "contrast", "radiologist",
	},
}

// Classify scores text against each DocType's keyword vocabulary and returns
// the highest scorer, breaking ties by the fixed order above. Returns
// DocUnknown if every score is zero.
func Classify(text string) model.DocType {
	lower := strings.ToLower(text)

	scores := make(map[model.DocType]int, len(order))
	for _, dt := range order {
		count := 0
		for _, kw := range vocab[dt] {
			count += strings.Count(lower, kw)
		}
		scores[dt] = count
	}

	best := model.DocUnknown
	bestScore := 0
	for _, dt := range order {
		if scores[dt] > bestScore {
			bestScore = scores[dt]
			best = dt
		}
	}
	return best
}

// Keywords returns the vocabulary used for dt, for use by the snippet
// selector to find keyword-bearing lines.
func Keywords(dt model.DocType) []string {
	if dt == model.DocUnknown {
		// Fall back to the union of every vocabulary so snippet selection
		// still has something to match against.
		var all []string
		for _, dt2 := range order {
			all = append(all, vocab[dt2]...)
		}
		return all
	}
	return vocab[dt]
}
