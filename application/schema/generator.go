// Package schema generates JSON schemas for configuration documents.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/archernet/callbridge/domain/entities"
	"github.com/invopop/jsonschema"
)

// ConfigSchemaID is the resource name the config schema is compiled under.
const ConfigSchemaID = "callbridge-config.json"

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12). Fields are optional
// unless tagged `jsonschema:"required"`; unknown properties are rejected.
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:             true, // Expand struct definitions inline
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Anonymous:                  true,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ConfigSchema returns the schema of entities.Config documents.
func ConfigSchema() ([]byte, error) {
	return GenerateSchema(&entities.Config{})
}
