// Package schema holds the per-DocType function-call schemas the remote
// extractor attaches to its request, and validates the model's parsed
// response against the selected schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kestrelcase/intakex/internal/model"
)

// Function is one function-call schema: a fixed name plus a JSON Schema
// "parameters" object.
type Function struct {
	Name       string
	Parameters map[string]any
}

const (
	FuncMedical    = "extract_medical_json"
	FuncPleading   = "extract_pleading_json"
	FuncPolice     = "extract_police_json"
	FuncTranscript = "extract_transcript_json"
	FuncEOB        = "extract_eob_json"
	FuncImaging    = "extract_imaging_json"
)

func props(p map[string]any) map[string]any { return p }

var registryDefs = map[model.DocType]Function{
	model.DocMedical: {
		Name: FuncMedical,
		Parameters: props(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"patient_name":      map[string]any{"type": "string"},
				"dob":               map[string]any{"type": "string"},
				"dates_of_service":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"diagnoses":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"procedures":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"medications":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"confidence":        map[string]any{"type": "number"},
			},
			"required": []any{"patient_name", "confidence"},
		}),
	},
	model.DocPleading: {
		Name: FuncPleading,
		Parameters: props(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"court":             map[string]any{"type": "string"},
				"caption":           map[string]any{"type": "string"},
				"index_number":      map[string]any{"type": "string"},
				"parties":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"causes_of_action":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"relief_sought":     map[string]any{"type": "string"},
				"confidence":        map[string]any{"type": "number"},
			},
			"required": []any{"caption", "confidence"},
		}),
	},
	model.DocPolice: {
		Name: FuncPolice,
		Parameters: props(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"report_number": map[string]any{"type": "string"},
				"incident_date": map[string]any{"type": "string"},
				"location":      map[string]any{"type": "string"},
				"officer":       map[string]any{"type": "string"},
				"vehicles":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"injuries":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"violations":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"confidence":    map[string]any{"type": "number"},
			},
			"required": []any{"incident_date", "confidence"},
		}),
	},
	model.DocTranscript: {
		Name: FuncTranscript,
		Parameters: props(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"witness_name":          map[string]any{"type": "string"},
				"date":                  map[string]any{"type": "string"},
				"key_admissions":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"key_inconsistencies":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"credibility_factors":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"citations": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"page": map[string]any{"type": "integer"},
							"line": map[string]any{"type": "string"},
							"text": map[string]any{"type": "string"},
						},
						"required": []any{"page", "text"},
					},
				},
				"confidence": map[string]any{"type": "number"},
			},
			"required": []any{"confidence"},
		}),
	},
	model.DocEOB: {
		Name: FuncEOB,
		Parameters: props(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"payer":          map[string]any{"type": "string"},
				"member":         map[string]any{"type": "string"},
				"claim_number":   map[string]any{"type": "string"},
				"service_dates":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"allowed_amount": map[string]any{"type": "string"},
				"denied_amount":  map[string]any{"type": "string"},
				"adjustments":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"confidence":     map[string]any{"type": "number"},
			},
			"required": []any{"payer", "claim_number", "confidence"},
		}),
	},
	model.DocImaging: {
		Name: FuncImaging,
		Parameters: props(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"patient_name": map[string]any{"type": "string"},
				"study_type":   map[string]any{"type": "string"},
				"study_date":   map[string]any{"type": "string"},
				"impression":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"findings":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"confidence":   map[string]any{"type": "number"},
			},
			"required": []any{"impression", "confidence"},
		}),
	},
}

// Registry compiles each DocType's JSON Schema once and reuses it across
// documents.
type Registry struct {
	compiled map[model.DocType]*jsonschema.Schema
}

// NewRegistry compiles all six function schemas. Returns an error if any
// schema fails to compile — this is a ConfigError-class startup failure.
func NewRegistry() (*Registry, error) {
	r := &Registry{compiled: make(map[model.DocType]*jsonschema.Schema, len(registryDefs))}
	for dt, fn := range registryDefs {
		b, err := json.Marshal(fn.Parameters)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", dt, err)
		}
		compiler := jsonschema.NewCompiler()
		resourceName := string(dt) + ".json"
		if err := compiler.AddResource(resourceName, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema resource for %s: %w", dt, err)
		}
		schema, err := compiler.Compile(resourceName)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", dt, err)
		}
		r.compiled[dt] = schema
	}
	return r, nil
}

// FunctionsFor returns the schemas offered to the model for dt. UNKNOWN
// receives all six; every other type receives only its own.
func FunctionsFor(dt model.DocType) []Function {
	if dt == model.DocUnknown {
		all := make([]Function, 0, len(registryDefs))
		// Stable order for deterministic request bodies.
		for _, k := range []model.DocType{
			model.DocMedical, model.DocPleading, model.DocPolice,
			model.DocTranscript, model.DocEOB, model.DocImaging,
		} {
			all = append(all, registryDefs[k])
		}
		return all
	}
	return []Function{registryDefs[dt]}
}

// ForcedFunctionName returns the function_call.name to force for dt.
// UNKNOWN defaults to the medical schema.
func ForcedFunctionName(dt model.DocType) string {
	if dt == model.DocUnknown {
		return FuncMedical
	}
	return registryDefs[dt].Name
}

// Validate checks a parsed extraction result against dt's compiled schema.
func (r *Registry) Validate(dt model.DocType, result model.ExtractionResult) error {
	effective := dt
	if effective == model.DocUnknown {
		effective = model.DocMedical
	}
	schema, ok := r.compiled[effective]
	if !ok {
		return fmt.Errorf("no compiled schema for %s", dt)
	}
	// jsonschema validates against decoded generic values (map[string]any),
	// which ExtractionResult already is.
	if err := schema.Validate(map[string]any(result)); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", dt, err)
	}
	return nil
}
