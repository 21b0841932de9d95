package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const taskDetailSchemaURL = "schema://task_detail.json"

// taskDetailSchema accepts both the flat single-question shape and the
// questions array. Go backends encode empty slices as null, so option
// lists may be null.
var taskDetailSchema = map[string]any{
	"type":     "object",
	"required": []any{"id"},
	"properties": map[string]any{
		"id":             map[string]any{"type": "integer"},
		"type":           map[string]any{"type": "string"},
		"question":       map[string]any{"type": "string"},
		"options":        stringList,
		"correct_answer": map[string]any{"type": "string"},
		"questions": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []any{"text"},
				"properties": map[string]any{
					"type":           map[string]any{"enum": []any{"", "choice", "text"}},
					"text":           map[string]any{"type": "string"},
					"options":        stringList,
					"correct_answer": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var stringList = map[string]any{
	"type":  []any{"array", "null"},
	"items": map[string]any{"type": "string"},
}

var (
	compileOnce      sync.Once
	compiledDetail   *jsonschema.Schema
	compileDetailErr error
)

// ValidateTaskDetail checks a raw task detail payload before it is decoded.
// Returns *ErrInvalidPayload on failure.
func ValidateTaskDetail(path string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidPayload{Path: path, Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := taskDetailValidator()
	if err != nil {
		return &ErrInvalidPayload{Path: path, Body: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidPayload{Path: path, Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func taskDetailValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a parsed JSON value; round-trip the Go literal.
		defBytes, err := json.Marshal(taskDetailSchema)
		if err != nil {
			compileDetailErr = err
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileDetailErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(taskDetailSchemaURL, def); err != nil {
			compileDetailErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledDetail, compileDetailErr = c.Compile(taskDetailSchemaURL)
	})
	return compiledDetail, compileDetailErr
}
