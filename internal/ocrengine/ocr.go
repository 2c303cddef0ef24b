// Package ocrengine invokes Tesseract on a preprocessed image and returns
// UTF-8 text.
package ocrengine

import (
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// Engine wraps a Tesseract client configured for a single language.
type Engine struct {
	lang string
	log  *slog.Logger
}

// New returns an Engine for the given language code (e.g. "eng").
func New(lang string, log *slog.Logger) *Engine {
	return &Engine{lang: lang, log: log}
}

// OCR runs Tesseract on imgPath and returns its UTF-8 text. Initialization or
// read failures are logged and return an empty string — callers treat
// empty-text-for-all-pages of a document as an OCRError, not this call alone.
func (e *Engine) OCR(imgPath string) string {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.lang); err != nil {
		e.log.Warn("ocr init failed", "path", imgPath, "lang", e.lang, "error", err)
		return ""
	}
	// LSTM-only engine mode.
	if err := client.SetVariable("tessedit_ocr_engine_mode", "1"); err != nil {
		e.log.Warn("ocr set engine mode failed", "path", imgPath, "error", err)
	}
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		e.log.Warn("ocr set preserve_interword_spaces failed", "path", imgPath, "error", err)
	}

	if err := client.SetImage(imgPath); err != nil {
		e.log.Warn("ocr read failed", "path", imgPath, "error", err)
		return ""
	}

	text, err := client.Text()
	if err != nil {
		e.log.Warn("ocr extraction failed", "path", imgPath, "error", err)
		return ""
	}
	return text
}
