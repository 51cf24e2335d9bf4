package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaData []byte

const schemaURL = "config.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Schema returns the JSON Schema that configuration documents follow.
func Schema() []byte {
	return schemaData
}

// ValidateDocument checks a raw configuration document against the schema
// before it is decoded. Unlike ValidateConfig it sees which keys were
// written, so misspelled options are reported instead of ignored.
func ValidateDocument(data []byte, ext string) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	instance, err := documentValue(data, ext)
	if err != nil {
		return err
	}

	if err := schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		var errs ValidationErrors
		collectSchemaErrors(ve, &errs)
		return errs
	}
	return nil
}

// documentValue decodes data into the plain JSON value model the validator
// expects.
func documentValue(data []byte, ext string) (any, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".json":
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	default:
		m := map[string]any{}
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
		raw = m
	}
	if raw != nil {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return nil, fmt.Errorf("normalize document: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return v, nil
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *ValidationErrors) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, ValidationError{
			Field:   pointerField(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// pointerField turns "/chewing/page_size" into "chewing.page_size".
func pointerField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "(root)"
	}
	ptr = strings.ReplaceAll(ptr, "/", ".")
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(ptr)
}
