package localextract

import (
	"testing"

	"github.com/kestrelcase/intakex/internal/model"
)

func TestExtract_NameCandidate(t *testing.T) {
	lc := Extract("Patient: Jane Smith. Diagnosis: concussion.", model.DocMedical, "snippet")
	got, ok := lc["name_candidate"].(string)
	if !ok || got == "" {
		t.Fatalf("expected name_candidate to be set, got %v", lc["name_candidate"])
	}
}

func TestExtract_DateCandidateISO(t *testing.T) {
	lc := Extract("Date of service: 2024-03-15", model.DocMedical, "snippet")
	if lc["date_candidate"] != "2024-03-15" {
		t.Errorf("expected ISO date, got %v", lc["date_candidate"])
	}
}

func TestExtract_DateCandidateUS(t *testing.T) {
	lc := Extract("Seen on 3/15/2024 for follow-up", model.DocMedical, "snippet")
	if lc["date_candidate"] != "3/15/2024" {
		t.Errorf("expected US date, got %v", lc["date_candidate"])
	}
}

func TestExtract_DateCandidateLeftmostWins(t *testing.T) {
	lc := Extract("Seen on 3/15/2024, followed up 2024-04-01", model.DocMedical, "snippet")
	if lc["date_candidate"] != "3/15/2024" {
		t.Errorf("expected earlier US date to win over later ISO date, got %v", lc["date_candidate"])
	}
}

func TestExtract_PhoneCandidate(t *testing.T) {
	lc := Extract("Call the office at 555-123-4567 for records.", model.DocMedical, "snippet")
	if lc["phone_candidate"] != "555-123-4567" {
		t.Errorf("expected phone candidate, got %v", lc["phone_candidate"])
	}
}

func TestExtract_AlwaysSetsSnippetAndCharCount(t *testing.T) {
	lc := Extract("no fields here", model.DocUnknown, "the snippet")
	if lc["important_snippets"] != "the snippet" {
		t.Errorf("expected important_snippets to be set verbatim")
	}
	if lc["char_count"] != len("the snippet") {
		t.Errorf("expected char_count to match snippet length, got %v", lc["char_count"])
	}
}

func TestExtract_TranscriptCitations(t *testing.T) {
	text := "Page 17\nQ: Did you see the light?\nA: Yes. Line 22\nQ: Are you sure?\nA: Yes, lines 23-24."
	lc := Extract(text, model.DocTranscript, "snippet")
	cites, ok := lc["local_citations"].([]model.Citation)
	if !ok || len(cites) == 0 {
		t.Fatalf("expected local_citations, got %v", lc["local_citations"])
	}
	if cites[0].Page != 17 {
		t.Errorf("expected first citation page 17, got %d", cites[0].Page)
	}
}

func TestExtract_CitationsCappedAtTen(t *testing.T) {
	text := "Page 1\n"
	for i := 0; i < 20; i++ {
		text += "Q: something. Line 1\n"
	}
	lc := Extract(text, model.DocTranscript, "snippet")
	cites := lc["local_citations"].([]model.Citation)
	if len(cites) > 10 {
		t.Errorf("expected at most 10 citations, got %d", len(cites))
	}
}

func TestExtract_NoCitationsForNonTranscript(t *testing.T) {
	text := "Page 1\nline 22 appears here"
	lc := Extract(text, model.DocMedical, "snippet")
	if _, ok := lc["local_citations"]; ok {
		t.Errorf("expected no local_citations for non-transcript doc type")
	}
}
