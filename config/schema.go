package config

import (
	"encoding/json"
	"sync"

	"github.com/grovetools/pulse/schema"
	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for pulse.yml by reflecting the
// Config struct. Extension sections are allowed as additional properties.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		Anonymous:                 true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	s := r.Reflect(&Config{})
	s.Title = "pulse configuration"
	s.Description = "Schema for pulse.yml / pulse.toml."
	s.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(s, "", "  ")
}

// SchemaValidator validates configuration against the generated JSON Schema.
type SchemaValidator struct {
	validator *schema.Validator
}

var (
	validatorOnce sync.Once
	validatorInst *schema.Validator
	validatorErr  error
)

// NewSchemaValidator returns a validator for the Config schema. The schema is
// generated and compiled once per process.
func NewSchemaValidator() (*SchemaValidator, error) {
	validatorOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			validatorErr = err
			return
		}
		validatorInst, validatorErr = schema.NewValidator("pulse.schema.json", data)
	})
	if validatorErr != nil {
		return nil, validatorErr
	}
	return &SchemaValidator{validator: validatorInst}, nil
}

// Validate validates configuration data against the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	return v.validator.Validate(configData)
}
