package pipeline

import "github.com/pythagorakase/nexus-sub001/model"

// ResponseFormat enforces structured output (JSON schema) on an
// OpenAI-compatible chat completions endpoint.
type ResponseFormat struct {
	Type       string      `json:"type"` // "json_schema"
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema defines the structured output schema.
type JSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

// ExtractionResponseFormat creates the response format for location
// extraction. Strict mode makes the endpoint reject any answer that does
// not conform to the schema.
func ExtractionResponseFormat() *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name:   "location_extraction",
			Strict: true,
			Schema: extractionRawSchema(),
		},
	}
}

// extractionRawSchema mirrors model.ExtractionResult.
// Field names must match the json tags there, the decoder rejects unknown
// fields.
func extractionRawSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"known_references": map[string]interface{}{
				"type":        "array",
				"description": "Places already in the catalog that this chunk references, cited by id.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"place_id":       map[string]interface{}{"type": "integer"},
						"reference_type": referenceTypeSchema(),
					},
					"required":             []string{"place_id", "reference_type"},
					"additionalProperties": false,
				},
			},
			"new_places": map[string]interface{}{
				"type":        "array",
				"description": "Locations referenced by this chunk that are absent from the catalog.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":           map[string]interface{}{"type": "string"},
						"zone":           map[string]interface{}{"type": "string"},
						"summary":        map[string]interface{}{"type": "string"},
						"reference_type": referenceTypeSchema(),
					},
					"required":             []string{"name", "zone", "summary", "reference_type"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"known_references", "new_places"},
		"additionalProperties": false,
	}
}

func referenceTypeSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"enum": []string{
			string(model.ReferenceSetting),
			string(model.ReferenceMention),
			string(model.ReferenceTransit),
		},
	}
}
