package notes

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const extractionInvalidCode = "EXTRACTION_SCHEMA_VIOLATION"

// ErrInvalidExtraction is wrapped by every schema violation
var ErrInvalidExtraction = errors.New("extraction does not match schema")

// Validator checks model output against the schema's JSON document
type Validator struct {
	compiled *jsonschema.Schema
}

// NewValidator compiles the JSON schema of s
func NewValidator(s *Schema) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(s.Name+".json", bytes.NewReader(s.JSONSchema())); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(s.Name + ".json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate returns a validation-category error listing every violation
func (v *Validator) Validate(data map[string]any) error {
	if data == nil {
		return wrapValidation(fmt.Errorf("%w: empty document", ErrInvalidExtraction))
	}

	// the validator expects plain JSON values
	doc := make(map[string]any, len(data))
	for k, val := range data {
		if n, ok := val.(int64); ok {
			doc[k] = float64(n)
			continue
		}
		doc[k] = val
	}

	err := v.compiled.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return wrapValidation(fmt.Errorf("%w: %s", ErrInvalidExtraction, strings.Join(issues(verr), "; ")))
	}
	return wrapValidation(fmt.Errorf("%w: %v", ErrInvalidExtraction, err))
}

func wrapValidation(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "extraction validation failed").
		WithTextCode(extractionInvalidCode)
}

func issues(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, loc+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}
