package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator validates raw documents against a compiled JSON schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles schema (JSON) under the given resource name.
func NewSchemaValidator(name string, schema []byte) (ports.DocumentValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}
	return &SchemaValidator{schema: sch}, nil
}

// Validate checks doc against the schema. doc may be any value that
// marshals to JSON; it is normalized to JSON types first so YAML and TOML
// integers validate like JSON numbers.
func (v *SchemaValidator) Validate(doc any) (*entities.ValidationResult, error) {
	result := &entities.ValidationResult{Valid: true}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var obj any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		for _, leaf := range leaves(ve) {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   leaf.InstanceLocation,
				Message: leaf.Message,
			})
		}
	}

	return result, nil
}

// leaves flattens the cause tree to the errors that carry the actual reason.
func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}
