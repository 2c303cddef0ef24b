package classify

import (
	"strings"
	"testing"

	"github.com/kestrelcase/intakex/internal/model"
)

func TestClassify_Pleading(t *testing.T) {
	text := "Plaintiff John Doe vs. Defendant ACME Corp. Index No. 12345. Caption: Supreme Court of the State of New York."
	if got := Classify(text); got != model.DocPleading {
		t.Errorf("expected PLEADING, got %s", got)
	}
}

func TestClassify_Medical(t *testing.T) {
	text := "Patient: Jane Smith. Diagnosis: concussion. Medication: ibuprofen. MRN 00123."
	if got := Classify(text); got != model.DocMedical {
		t.Errorf("expected MEDICAL, got %s", got)
	}
}

func TestClassify_Transcript(t *testing.T) {
	text := "Page 17\nQ: Did you see the light?\nA: Yes. Line 22\nQ: Are you sure?\nA: Yes."
	if got := Classify(text); got != model.DocTranscript {
		t.Errorf("expected TRANSCRIPT, got %s", got)
	}
}

func TestClassify_Unknown(t *testing.T) {
	if got := Classify("the quick brown fox jumps over the lazy dog"); got != model.DocUnknown {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}

func TestClassify_TieBreakOrder(t *testing.T) {
	// One hit each for MEDICAL and PLEADING; MEDICAL must win per fixed order.
	text := "diagnosis plaintiff"
	if got := Classify(text); got != model.DocMedical {
		t.Errorf("expected MEDICAL on tie, got %s", got)
	}
}

func TestClassify_Monotonicity(t *testing.T) {
	base := "some generic document text with no signal"
	withMedical := base + " diagnosis treatment medication"

	baseScore := strings.Count(strings.ToLower(base), "diagnosis")
	withScore := strings.Count(strings.ToLower(withMedical), "diagnosis")
	if withScore <= baseScore {
		t.Fatalf("sanity check failed: expected more diagnosis hits after adding keywords")
	}

	if got := Classify(withMedical); got != model.DocMedical {
		t.Errorf("adding MEDICAL keywords should classify as MEDICAL, got %s", got)
	}
}
