package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionResponseFormat(t *testing.T) {
	t.Run("Format enforces a strict named schema", func(t *testing.T) {
		format := ExtractionResponseFormat()

		require.NotNil(t, format, "Expected a response format")
		assert.Equal(t, "json_schema", format.Type, "Expected the json_schema response type")
		require.NotNil(t, format.JSONSchema, "Expected an attached schema")
		assert.Equal(t, "location_extraction", format.JSONSchema.Name, "Expected the schema name")
		assert.True(t, format.JSONSchema.Strict, "Expected strict mode")
		assert.NotNil(t, format.JSONSchema.Schema, "Expected a schema body")
	})

	t.Run("Schema covers both answer sections", func(t *testing.T) {
		schema := ExtractionResponseFormat().JSONSchema.Schema

		properties, ok := schema["properties"].(map[string]interface{})
		require.True(t, ok, "Expected schema properties")
		assert.Contains(t, properties, "known_references", "Expected the known references section")
		assert.Contains(t, properties, "new_places", "Expected the new places section")
		assert.Equal(t, false, schema["additionalProperties"], "Expected closed top-level schema")
	})

	t.Run("Schema marshals with the reference type enum", func(t *testing.T) {
		data, err := json.Marshal(ExtractionResponseFormat())

		require.NoError(t, err, "Expected the format to marshal")
		body := string(data)
		assert.Contains(t, body, `"strict":true`, "Expected strict mode on the wire")
		assert.Contains(t, body, `"setting"`, "Expected the setting reference type in the enum")
		assert.Contains(t, body, `"mention"`, "Expected the mention reference type in the enum")
		assert.Contains(t, body, `"transit"`, "Expected the transit reference type in the enum")
		assert.Contains(t, body, `"place_id"`, "Expected the place id field for known references")
	})

	t.Run("New place items require every field", func(t *testing.T) {
		schema := ExtractionResponseFormat().JSONSchema.Schema

		properties := schema["properties"].(map[string]interface{})
		newPlaces := properties["new_places"].(map[string]interface{})
		items := newPlaces["items"].(map[string]interface{})
		required, ok := items["required"].([]string)
		require.True(t, ok, "Expected a required list on new place items")

		assert.ElementsMatch(t, []string{"name", "zone", "summary", "reference_type"}, required, "Expected all new place fields to be required")
		assert.Equal(t, false, items["additionalProperties"], "Expected closed new place items")
	})
}
