package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resultSchema builds the JSON schema the inference response must satisfy
// for the given expected field names. Expected fields may be absent, but
// field names outside the resolved schema are rejected.
func resultSchema(fields []string) map[string]interface{} {
	props := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		props[f] = map[string]interface{}{}
	}

	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"fields", "overall_confidence", "requires_manual_review"},
		"properties": map[string]interface{}{
			"fields": map[string]interface{}{
				"type":                 "object",
				"properties":           props,
				"additionalProperties": false,
			},
			"overall_confidence": map[string]interface{}{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"requires_manual_review": map[string]interface{}{
				"type": "boolean",
			},
			"notes": map[string]interface{}{
				"type": "string",
			},
		},
	}
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]interface{}, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("result.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
