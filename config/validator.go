package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/grovetools/casemgmt/schema"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SchemaValidator validates raw configuration documents against the schema
// generated from Config.
type SchemaValidator struct {
	validator *schema.Validator
}

// NewSchemaValidator compiles the configuration schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	validator, err := schema.NewValidatorFromJSON("casemgmt-config", data)
	if err != nil {
		return nil, err
	}
	return &SchemaValidator{validator: validator}, nil
}

// Validate validates decoded configuration data against the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	return v.validator.Validate(configData)
}

// ValidateFile checks the file at path against the schema before any
// environment expansion or defaults are applied.
func (v *SchemaValidator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc map[string]interface{}
	switch FormatFor(path) {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	// Decoded YAML and TOML carry Go integer types; JSON gives the
	// validator the numbers it expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var normalized interface{}
	if err := dec.Decode(&normalized); err != nil {
		return err
	}
	return v.Validate(normalized)
}
