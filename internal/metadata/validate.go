package metadata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaBytes []byte

const schemaResourceURL = "https://github.com/hasura/ndc-postgres-go/internal/metadata/schema.json"

var compiledSchema *jsonschema.Schema

func compileSchema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("metadata: parsing embedded schema: %w", err)
	}
	if err := c.AddResource(schemaResourceURL, doc); err != nil {
		return nil, fmt.Errorf("metadata: loading embedded schema: %w", err)
	}
	sch, err := c.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("metadata: compiling embedded schema: %w", err)
	}
	compiledSchema = sch
	return sch, nil
}

// ValidateDocument checks raw configuration.json bytes against the
// connector's schema before attempting to unmarshal them into Metadata. This
// catches structurally malformed configuration (missing required fields,
// wrong types) with a precise path, rather than a generic json.Unmarshal
// type error.
func ValidateDocument(raw []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("metadata: configuration is not valid JSON: %w", err)
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("metadata: configuration failed schema validation: %w", err)
	}
	return nil
}

// Load validates and deserializes configuration.json, upgrades it to
// CurrentVersion, and validates every native query's SQL template.
func Load(raw []byte) (Metadata, error) {
	if err := ValidateDocument(raw); err != nil {
		return Metadata{}, err
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("metadata: decoding configuration: %w", err)
	}
	m, err := Upgrade(m)
	if err != nil {
		return Metadata{}, err
	}
	if err := ValidateNativeQueries(m); err != nil {
		return Metadata{}, err
	}
	return m, nil
}
