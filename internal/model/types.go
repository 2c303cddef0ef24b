// Package model holds the data types shared across the extraction pipeline.
package model

// MediaKind is the coarse kind of an input file.
type MediaKind string

const (
	MediaPDF   MediaKind = "pdf"
	MediaImage MediaKind = "image"
)

// InputRef identifies a single file to be processed. Immutable.
type InputRef struct {
	Path string
	Kind MediaKind
}

// PageImage is a rasterized page, ordered by Index within its document.
type PageImage struct {
	Path  string
	Index int
}

// PageText is the OCR'd text of one page, ordered by Index within its document.
type PageText struct {
	Text  string
	Index int
}

// DocType is the coarse document classification used to pick a schema.
type DocType string

const (
	DocMedical   DocType = "MEDICAL"
	DocPleading  DocType = "PLEADING"
	DocPolice    DocType = "POLICE"
	DocTranscript DocType = "TRANSCRIPT"
	DocEOB       DocType = "INSURANCE_EOB"
	DocImaging   DocType = "IMAGING"
	DocUnknown   DocType = "UNKNOWN"
)

// Tag is the lowercase wire form of a DocType, used in cache keys, the LLM
// prompt, and output. Mirrors doc_type_str in the legacy extractor.
func (d DocType) Tag() string {
	switch d {
	case DocMedical:
		return "medical_record"
	case DocPleading:
		return "pleading"
	case DocPolice:
		return "police_report"
	case DocTranscript:
		return "transcript"
	case DocEOB:
		return "insurance_eob"
	case DocImaging:
		return "imaging_report"
	default:
		return "unknown"
	}
}

// Citation is a single transcript line reference.
type Citation struct {
	Page int    `json:"page"`
	Line string `json:"line"`
	Text string `json:"text"`
}

// LocalCandidates are the pre-LLM extraction artifacts: the snippet sent to
// the model plus whatever the regex probes found. Always JSON-serializable.
type LocalCandidates map[string]any

// NewLocalCandidates returns an empty candidate map ready for population.
func NewLocalCandidates() LocalCandidates {
	return LocalCandidates{}
}

// ExtractionResult is the model's structured JSON output, conforming to one
// of the six per-type function schemas. Always contains "confidence".
type ExtractionResult map[string]any

// MergedRecord is the final per-document structured output emitted to sinks:
// ExtractionResult overlaid with local candidates and document metadata.
type MergedRecord map[string]any

// DocResult is produced exactly once per input, successful or not.
type DocResult struct {
	InputPath string       `json:"input_path"`
	DocType   string       `json:"doc_type"`
	Merged    MergedRecord `json:"data,omitempty"`
	OK        bool         `json:"ok"`
	Error     string       `json:"error,omitempty"`
	Pages     int          `json:"pages"`
	CharsUsed int          `json:"chars_used"`
	Source    string       `json:"source"`
}
