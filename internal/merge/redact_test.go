package merge

import (
	"reflect"
	"testing"

	"github.com/kestrelcase/intakex/internal/model"
)

func TestRedact_MasksSSN(t *testing.T) {
	record := model.MergedRecord{"notes": "SSN on file: 123-45-6789"}
	out, err := Redact(record)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if out["notes"] != "SSN on file: ***-**-****" {
		t.Errorf("expected SSN masked, got %v", out["notes"])
	}
}

func TestRedact_MasksPhone(t *testing.T) {
	record := model.MergedRecord{"notes": "call 555-123-4567 for records"}
	out, err := Redact(record)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if out["notes"] != "call ***-***-**** for records" {
		t.Errorf("expected phone masked, got %v", out["notes"])
	}
}

func TestRedact_MasksEmail(t *testing.T) {
	record := model.MergedRecord{"notes": "contact jane.doe@example.com"}
	out, err := Redact(record)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if out["notes"] != "contact ***@***.***" {
		t.Errorf("expected email masked, got %v", out["notes"])
	}
}

func TestRedact_WalksNestedStructures(t *testing.T) {
	record := model.MergedRecord{
		"citations": []model.Citation{{Page: 1, Line: "5", Text: "SSN 123-45-6789 noted"}},
	}
	out, err := Redact(record)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	cites, ok := out["citations"].([]any)
	if !ok || len(cites) != 1 {
		t.Fatalf("expected citations walked as generic slice, got %#v", out["citations"])
	}
	entry := cites[0].(map[string]any)
	if entry["text"] != "SSN ***-**-**** noted" {
		t.Errorf("expected nested text redacted, got %v", entry["text"])
	}
}

func TestRedact_IsIdempotent(t *testing.T) {
	record := model.MergedRecord{
		"notes": "SSN 123-45-6789, call 555-123-4567, email a@b.com",
	}
	once, err := Redact(record)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	twice, err := Redact(once)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("expected redaction to be idempotent, got once=%v twice=%v", once, twice)
	}
}
