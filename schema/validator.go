package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates decoded JSON against a compiled JSON Schema.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// NewValidator reflects a schema from record (a struct value or pointer) and
// compiles it. Fields without omitempty are required; unknown properties are
// allowed so the backend can add attributes freely.
func NewValidator(name string, record interface{}) (*Validator, error) {
	r := &invopop.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	s := r.Reflect(record)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s schema: %w", name, err)
	}
	return NewValidatorFromJSON(name, data)
}

// NewValidatorFromJSON compiles a schema document.
func NewValidatorFromJSON(name string, schemaJSON []byte) (*Validator, error) {
	url := name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add %s schema resource: %w", name, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
	}

	return &Validator{name: name, schema: compiled}, nil
}

// MustValidator is like NewValidator but panics on error. Intended for
// package-level validators built from fixed record types.
func MustValidator(name string, record interface{}) *Validator {
	v, err := NewValidator(name, record)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the name the validator was built with.
func (v *Validator) Name() string {
	return v.name
}

// Validate validates a single decoded value. Values produced by
// encoding/json (including json.Number) are accepted directly; anything
// else is round-tripped through JSON first.
func (v *Validator) Validate(data interface{}) error {
	doc, err := normalize(data)
	if err != nil {
		return err
	}

	if err := v.schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var errorMessages []string
			collectErrors(validationErr, "", &errorMessages)
			return fmt.Errorf("%s schema validation failed:\n%s", v.name, strings.Join(errorMessages, "\n"))
		}
		return fmt.Errorf("%s schema validation failed: %w", v.name, err)
	}

	return nil
}

// ValidateEach validates every element of items against the record schema.
// Error locations are prefixed with the element index.
func (v *Validator) ValidateEach(items []interface{}) error {
	var errorMessages []string
	for i, item := range items {
		doc, err := normalize(item)
		if err != nil {
			return err
		}
		if err := v.schema.Validate(doc); err != nil {
			prefix := fmt.Sprintf("/%d", i)
			if validationErr, ok := err.(*jsonschema.ValidationError); ok {
				collectErrors(validationErr, prefix, &errorMessages)
			} else {
				errorMessages = append(errorMessages, fmt.Sprintf("- %s: %v", prefix, err))
			}
		}
	}
	if len(errorMessages) > 0 {
		return fmt.Errorf("%s schema validation failed:\n%s", v.name, strings.Join(errorMessages, "\n"))
	}
	return nil
}

func normalize(data interface{}) (interface{}, error) {
	switch data.(type) {
	case nil, bool, string, json.Number, float64, map[string]interface{}, []interface{}:
		return data, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data for validation: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}
	return doc, nil
}

// collectErrors recursively collects all validation errors into a slice
func collectErrors(err *jsonschema.ValidationError, prefix string, messages *[]string) {
	if len(err.Causes) == 0 {
		loc := prefix + err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*messages = append(*messages, fmt.Sprintf("- %s: %s", loc, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, prefix, messages)
	}
}
