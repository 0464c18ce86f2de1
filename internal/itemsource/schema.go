package itemsource

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://vocabdrill/items.json"

const itemFileSchema = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "level":  {"type": "integer", "minimum": 0},
    "lesson": {"type": "integer", "minimum": 0},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["prompt", "answers"],
        "properties": {
          "id":      {"type": ["string", "integer"]},
          "prompt":  {"type": "string", "minLength": 1},
          "answers": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "kind":   {"enum": ["sentence", "fill_in_blank", "vocabulary"]},
          "level":  {"type": "integer", "minimum": 0},
          "lesson": {"type": "integer", "minimum": 0},
          "hint":   {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// itemSchema compiles the item file schema once.
func itemSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw bytes.
		var def any
		if err := json.Unmarshal([]byte(itemFileSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validate checks a parsed JSON document against the item file schema.
func validate(doc any) error {
	schema, err := itemSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
