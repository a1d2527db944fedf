package payload

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

// stringOrList accepts "x" as well as ["x", "y"].
var stringOrList = map[string]any{
	"type":  []any{"string", "array"},
	"items": map[string]any{"type": "string"},
}

// quizSchema is the structural contract for a generated quiz.
var quizSchema = map[string]any{
	"type":     "array",
	"minItems": 1,
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 4,
				"maxItems": 4,
			},
			"answer": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"question", "options", "answer"},
	},
}

// courseSchema is the structural contract for generated course content.
var courseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"overview":   map[string]any{"type": "string", "minLength": 1},
		"objectives": stringList,
		"skills":     stringList,
		"curriculum": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"moduleTitle": map[string]any{"type": "string"},
					"lessons":     stringList,
				},
				"required": []any{"moduleTitle"},
			},
		},
		"duration":       map[string]any{"type": "string"},
		"targetAudience": stringOrList,
		"assessment":     stringOrList,
	},
	"required": []any{"overview", "objectives", "skills"},
}

var schemaDefs = map[Kind]map[string]any{
	KindQuiz:          quizSchema,
	KindCourseContent: courseSchema,
}

// schemaCache caches compiled JSON schemas by kind.
var schemaCache sync.Map // map[Kind]*jsonschema.Schema

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(kind Kind) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(kind); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := schemaDefs[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for %s", kind)
	}

	// The compiler wants a decoded JSON document, not Go literals.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var doc any
	if err := json.Unmarshal(defBytes, &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", kind)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(kind, compiled)
	return compiled, nil
}
