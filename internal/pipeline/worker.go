package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kestrelcase/intakex/internal/cache"
	"github.com/kestrelcase/intakex/internal/classify"
	"github.com/kestrelcase/intakex/internal/config"
	"github.com/kestrelcase/intakex/internal/errs"
	"github.com/kestrelcase/intakex/internal/localextract"
	"github.com/kestrelcase/intakex/internal/merge"
	"github.com/kestrelcase/intakex/internal/model"
	"github.com/kestrelcase/intakex/internal/ocrengine"
	"github.com/kestrelcase/intakex/internal/preprocess"
	"github.com/kestrelcase/intakex/internal/rasterize"
	"github.com/kestrelcase/intakex/internal/remote"
	"github.com/kestrelcase/intakex/internal/snippet"
	"github.com/kestrelcase/intakex/internal/workspace"
)

// Worker runs the full per-document pipeline: rasterize/preprocess/OCR,
// classify, snippet, local extraction, cache lookup or remote extraction,
// merge, and optional redaction.
type Worker struct {
	cfg    config.Config
	ocr    *ocrengine.Engine
	remote *remote.Client
	cache  *cache.Cache
	log    *slog.Logger
}

// NewWorker builds a Worker sharing the given collaborators across
// documents. cache may be nil to disable caching.
func NewWorker(cfg config.Config, ocr *ocrengine.Engine, remoteClient *remote.Client, c *cache.Cache, log *slog.Logger) *Worker {
	return &Worker{cfg: cfg, ocr: ocr, remote: remoteClient, cache: c, log: log}
}

// Process runs the pipeline for a single input, always returning a
// model.DocResult — OK=false with Error populated on any failure, never an
// error return, so the orchestrator can record exactly one result per input.
func (w *Worker) Process(ctx context.Context, in model.InputRef) (result model.DocResult) {
	result = model.DocResult{
		InputPath: in.Path,
		Source:    filepath.Base(in.Path),
		DocType:   model.DocUnknown.Tag(),
	}

	ws, err := workspace.New("")
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() {
		if result.OK {
			ws.Close()
			return
		}
		dir := ws.Keep()
		if dir != "" && w.log != nil {
			w.log.Warn("kept workspace for failed document", "path", in.Path, "workspace", dir)
		}
	}()

	pages, err := w.rasterOrPassthrough(in, ws)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Pages = len(pages)

	pageTexts, err := w.ocrAll(pages, ws)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	fullText := strings.Join(pageTexts, "\n")
	dt := classify.Classify(fullText)
	result.DocType = dt.Tag()

	snip := snippet.Select(fullText, dt, classify.Keywords(dt), snippet.Config{
		MaxLines: w.cfg.MaxLines,
		MaxChars: w.cfg.MaxChars,
	})
	result.CharsUsed = len(snip)

	local := localextract.Extract(fullText, dt, snip)

	extracted, err := w.extract(ctx, dt, local, snip)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	merged := merge.Merge(extracted, local, dt, in.Path, len(pages), pageTexts, merge.Options{Audit: w.cfg.Audit})
	if w.cfg.Redact {
		merged, err = merge.Redact(merged)
		if err != nil {
			result.Error = fmt.Sprintf("redact: %v", err)
			return result
		}
	}

	result.Merged = merged
	result.OK = true
	return result
}

// rasterOrPassthrough rasterizes a PDF into the workspace, or for an image
// input registers the source path directly as the sole page.
func (w *Worker) rasterOrPassthrough(in model.InputRef, ws *workspace.Workspace) ([]model.PageImage, error) {
	if in.Kind == model.MediaPDF {
		return rasterize.Rasterize(in.Path, ws)
	}
	return []model.PageImage{{Path: in.Path, Index: 0}}, nil
}

// ocrAll preprocesses and OCRs each page in order, returning page text in
// page order. An all-empty result across every page is an *errs.OCRError.
func (w *Worker) ocrAll(pages []model.PageImage, ws *workspace.Workspace) ([]string, error) {
	texts := make([]string, len(pages))
	anyText := false

	for _, p := range pages {
		tile := ws.TilePath(fmt.Sprintf("page-%04d.png", p.Index))
		if err := preprocess.Preprocess(p.Path, tile); err != nil {
			return nil, err
		}
		text := w.ocr.OCR(tile)
		if strings.TrimSpace(text) != "" {
			anyText = true
		}
		texts[p.Index] = text
	}

	if !anyText {
		return nil, &errs.OCRError{Path: "document", Err: nil}
	}
	return texts, nil
}

// extract returns the cached result for (dt, local) if present, else calls
// the remote extractor and caches a successful result.
func (w *Worker) extract(ctx context.Context, dt model.DocType, local model.LocalCandidates, snip string) (model.ExtractionResult, error) {
	if w.cache != nil {
		key, err := cache.Key(dt, local)
		if err == nil {
			if cached, ok, err := w.cache.Get(key); err == nil && ok {
				return cached, nil
			}
		}
		result, err := w.remote.Extract(ctx, dt, local, snip)
		if err != nil {
			return nil, err
		}
		if key != "" {
			_ = w.cache.Put(key, result)
		}
		return result, nil
	}
	return w.remote.Extract(ctx, dt, local, snip)
}
