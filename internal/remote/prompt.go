package remote

import (
	"fmt"

	"github.com/kestrelcase/intakex/internal/model"
)

const systemInstruction = `You are a legal-intake document extractor. Given an OCR snippet and a ` +
	`set of locally-found candidate fields, call the single most appropriate function with a ` +
	`structured JSON object matching its schema. Only use information present in the input. ` +
	`Always include a "confidence" field between 0 and 1.`

// BuildUserMessage builds the user message body: the doc type guess, the
// local candidates JSON, and the (already truncated) snippet.
func BuildUserMessage(dt model.DocType, localJSON, snippet string) string {
	return fmt.Sprintf(
		"Document type guess: %s. Keep output minified JSON only.\n%s\n---\n%s",
		dt.Tag(), localJSON, snippet,
	)
}
