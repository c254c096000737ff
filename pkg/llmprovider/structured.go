package llmprovider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateStructured parses raw as JSON and validates it against schema.
// Every structured-output call in this package routes through it. A
// validation failure is a retriable error from the caller's
// perspective — task extraction, classification, and orchestration all
// retry up to max_generation_retries on this kind of failure.
func ValidateStructured(schema []byte, raw string) (map[string]any, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
 return nil, fmt.Errorf("llmprovider: response is not valid JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler
	if err := compiler.AddResource("request.json", bytes.NewReader(schema)); err != nil {
 return nil, fmt.Errorf("llmprovider: invalid schema: %w", err)
	}
	compiled, err := compiler.Compile("request.json")
	if err != nil {
 return nil, fmt.Errorf("llmprovider: invalid schema: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
 return nil, fmt.Errorf("llmprovider: structured output failed schema validation: %w", err)
	}

	result, ok := doc.(map[string]any)
	if !ok {
 return nil, fmt.Errorf("llmprovider: structured output must be a JSON object")
	}
	return result, nil
}
