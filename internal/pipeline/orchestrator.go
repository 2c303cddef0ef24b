// Package pipeline wires the extraction stages together and drives a fixed
// worker pool over a directory or single file of inputs.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kestrelcase/intakex/internal/config"
	"github.com/kestrelcase/intakex/internal/errs"
	"github.com/kestrelcase/intakex/internal/model"
)

// Summary is the combined-output document written once all workers join.
type Summary struct {
	GeneratedAt int64                `json:"generated_at"`
	Model       string               `json:"model"`
	Documents   []model.MergedRecord `json:"documents"`
	Errors      []DocError           `json:"errors"`
	Stats       Stats                `json:"stats"`
}

// DocError records one failed input for the combined output.
type DocError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Stats summarizes a run for the combined output.
type Stats struct {
	Processed       int     `json:"processed"`
	OK              int     `json:"ok"`
	Errors          int     `json:"errors"`
	AvgSnippetChars float64 `json:"avg_snippet_chars"`
}

// Orchestrator distributes a fixed input set across N workers pulling from a
// shared atomic index, then assembles the combined output.
type Orchestrator struct {
	cfg       config.Config
	newWorker func() *Worker
	log       *slog.Logger

	// outputMu serializes stdout progress, per-file writes, JSONL append,
	// and results slot assignment across workers.
	outputMu sync.Mutex
}

// NewOrchestrator builds an Orchestrator. newWorker is called once per
// spawned goroutine so each worker gets its own OCR client (gosseract
// clients are not safe for concurrent use).
func NewOrchestrator(cfg config.Config, newWorker func() *Worker, log *slog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, newWorker: newWorker, log: log}
}

// Run collects inputs under cfg.InputPath, processes them with a fixed pool
// of min(cfg.Threads, len(inputs)) workers, and writes the combined output
// to cfg.OutputJSON. Results are assembled into the combined output in
// input order regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	inputs, err := CollectInputs(o.cfg.InputPath)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &errs.ConfigError{Msg: fmt.Sprintf("no supported inputs found under %s", o.cfg.InputPath)}
	}

	poolSize := o.cfg.Threads
	if poolSize > len(inputs) {
		poolSize = len(inputs)
	}
	if poolSize < 1 {
		poolSize = 1
	}

	results := make([]model.DocResult, len(inputs))
	var nextIdx int64 = -1
	var completed int64

	var wg sync.WaitGroup
	wg.Add(poolSize)
	for i := 0; i < poolSize; i++ {
		go func() {
			defer wg.Done()
			worker := o.newWorker()
			for {
				idx := atomic.AddInt64(&nextIdx, 1)
				if int(idx) >= len(inputs) {
					return
				}
				in := inputs[idx]
				res := worker.Process(ctx, in)
				o.outputMu.Lock()
				results[idx] = res
				o.outputMu.Unlock()

				n := atomic.AddInt64(&completed, 1)
				o.recordCompletion(res, int(n), len(inputs))
			}
		}()
	}
	wg.Wait()

	summary := o.assemble(results)
	if err := o.writeCombined(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// recordCompletion performs all per-item side effects that must be
// serialized: per-file write, JSONL append, and progress line.
func (o *Orchestrator) recordCompletion(res model.DocResult, n, total int) {
	o.outputMu.Lock()
	defer o.outputMu.Unlock()

	status := "OK"
	if !res.OK {
		status = "ERR"
	}
	fmt.Printf("[%d/%d] %s -> %s\n", n, total, res.Source, status)

	if o.cfg.PerFile && res.OK {
		if err := writePerFile(res); err != nil {
			o.log.Warn("per-file write failed", "source", res.Source, "error", err)
		}
	}

	if o.cfg.JSONLPath != "" {
		if err := appendJSONL(o.cfg.JSONLPath, res); err != nil {
			o.log.Warn("jsonl append failed", "source", res.Source, "error", err)
		}
	}
}

func writePerFile(res model.DocResult) error {
	stem := strings.TrimSuffix(res.InputPath, filepath.Ext(res.InputPath))
	path := stem + ".extracted.json"
	b, err := json.MarshalIndent(res.Merged, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &errs.IOError{Path: path, Err: err}
	}
	return nil
}

type jsonlLine struct {
	OK      bool               `json:"ok"`
	Source  string             `json:"source"`
	DocType string             `json:"doc_type"`
	Pages   int                `json:"page_count"`
	Data    model.MergedRecord `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func appendJSONL(path string, res model.DocResult) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &errs.IOError{Path: path, Err: err}
	}
	defer f.Close()

	line := jsonlLine{OK: res.OK, Source: res.Source, DocType: res.DocType, Pages: res.Pages, Data: res.Merged, Error: res.Error}
	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = f.Write(b)
	return err
}

func (o *Orchestrator) assemble(results []model.DocResult) *Summary {
	summary := &Summary{
		Model: o.cfg.Model,
	}

	var totalChars int
	for _, r := range results {
		summary.Stats.Processed++
		if r.OK {
			summary.Stats.OK++
			summary.Documents = append(summary.Documents, r.Merged)
			totalChars += r.CharsUsed
		} else {
			summary.Stats.Errors++
			summary.Errors = append(summary.Errors, DocError{Source: r.Source, Error: r.Error})
		}
	}
	if summary.Stats.OK > 0 {
		summary.Stats.AvgSnippetChars = float64(totalChars) / float64(summary.Stats.OK)
	}
	return summary
}

func (o *Orchestrator) writeCombined(summary *Summary) error {
	summary.GeneratedAt = nowUnix()
	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.cfg.OutputJSON, b, 0o644); err != nil {
		return &errs.IOError{Path: o.cfg.OutputJSON, Err: err}
	}
	return nil
}
