package remote

import (
	"testing"
	"time"

	"github.com/kestrelcase/intakex/internal/model"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(model.DocPleading, 100)
	stats.Record(model.DocPleading, 200)
	stats.Record(model.DocPleading, 300)
	stats.Record(model.DocPleading, 400)
	stats.Record(model.DocPleading, 500)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewLLMStats(10 * time.Millisecond)
	stats.Record(model.DocMedical, 100)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(model.DocMedical, 200)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLLMStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(model.DocEOB, -10)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLLMStatsSnapshotByDocType(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(model.DocMedical, 100)
	stats.Record(model.DocMedical, 300)
	stats.Record(model.DocPleading, 900)

	byType := stats.SnapshotByDocType()
	if len(byType) != 2 {
		t.Fatalf("expected 2 doc types, got %d", len(byType))
	}

	med := byType[model.DocMedical]
	if med.Count != 2 || med.AvgMs != 200 {
		t.Fatalf("expected medical count=2 avg=200, got count=%d avg=%f", med.Count, med.AvgMs)
	}

	pleading := byType[model.DocPleading]
	if pleading.Count != 1 || pleading.MinMs != 900 {
		t.Fatalf("expected pleading count=1 min=900, got count=%d min=%d", pleading.Count, pleading.MinMs)
	}

	if _, ok := byType[model.DocImaging]; ok {
		t.Fatalf("expected no entry for doc type with zero samples")
	}
}
