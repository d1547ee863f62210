package request

import (
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/kbukum/openbatch/errors"
)

// OutputSchema is a named JSON schema the model output must follow.
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any
	Strict      bool
}

// NewOutputSchema wraps a caller supplied schema. When strict is set the
// schema is normalised with StrictSchema.
func NewOutputSchema(name string, schema map[string]any, strict bool) OutputSchema {
	if strict {
		schema = StrictSchema(schema)
	}
	return OutputSchema{Name: name, Schema: schema, Strict: strict}
}

// SchemaFor generates a strict output schema from the Go type of v. Struct
// field tags follow the go-openai jsonschema conventions (json, description,
// enum, required). The schema name is the type name.
func SchemaFor(v any) (OutputSchema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return OutputSchema{}, errors.InvalidInput("output_type", "nil value")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	def, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		return OutputSchema{}, errors.InvalidInput("output_type", err.Error()).WithCause(err)
	}
	if len(def.Defs) == 0 {
		def.Defs = nil
	}
	data, err := json.Marshal(def)
	if err != nil {
		return OutputSchema{}, errors.Internal(err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return OutputSchema{}, errors.Internal(err)
	}
	name := t.Name()
	if name == "" {
		name = "output"
	}
	return OutputSchema{Name: name, Schema: StrictSchema(schema), Strict: true}, nil
}

// StrictSchema returns a copy of schema normalised for strict structured
// output: every object gets additionalProperties false (unless already set)
// and lists all of its properties as required. A $ref carrying sibling keys
// is replaced by the referenced definition merged with those keys.
func StrictSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	return strictNode(schema, schema, 0)
}

// refDepth bounds $ref unrolling on self-referencing definitions.
const refDepth = 32

func strictNode(node, root map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}

	if ref, ok := out["$ref"].(string); ok && len(out) > 1 && depth < refDepth {
		if target := resolveRef(root, ref); target != nil {
			merged := make(map[string]any, len(target)+len(out))
			for k, v := range target {
				merged[k] = v
			}
			for k, v := range out {
				if k != "$ref" {
					merged[k] = v
				}
			}
			return strictNode(merged, root, depth+1)
		}
	}

	if props, ok := out["properties"].(map[string]any); ok && len(props) == 0 {
		if t, typed := out["type"]; typed && t != "object" {
			delete(out, "properties")
		}
	}
	if props, ok := out["properties"].(map[string]any); ok {
		next := make(map[string]any, len(props))
		required := make([]string, 0, len(props))
		for name, p := range props {
			next[name] = strictValue(p, root, depth)
			required = append(required, name)
		}
		sort.Strings(required)
		out["properties"] = next
		out["required"] = required
	}
	if out["type"] == "object" || out["properties"] != nil {
		if _, set := out["additionalProperties"]; !set {
			out["additionalProperties"] = false
		}
	}
	if items, ok := out["items"]; ok {
		out["items"] = strictValue(items, root, depth)
	}
	for _, key := range []string{"anyOf", "allOf", "oneOf"} {
		if list, ok := out[key].([]any); ok {
			next := make([]any, len(list))
			for i, item := range list {
				next[i] = strictValue(item, root, depth)
			}
			out[key] = next
		}
	}
	for _, key := range []string{"$defs", "definitions"} {
		if defs, ok := out[key].(map[string]any); ok {
			next := make(map[string]any, len(defs))
			for name, d := range defs {
				next[name] = strictValue(d, root, depth)
			}
			out[key] = next
		}
	}
	return out
}

func strictValue(v any, root map[string]any, depth int) any {
	switch x := v.(type) {
	case map[string]any:
		return strictNode(x, root, depth)
	case []any:
		next := make([]any, len(x))
		for i, item := range x {
			next[i] = strictValue(item, root, depth)
		}
		return next
	}
	return v
}

// resolveRef looks up a local "#/$defs/Name" or "#/definitions/Name" reference.
func resolveRef(root map[string]any, ref string) map[string]any {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		name, ok := strings.CutPrefix(ref, prefix)
		if !ok {
			continue
		}
		defs, _ := root[strings.TrimSuffix(strings.TrimPrefix(prefix, "#/"), "/")].(map[string]any)
		target, _ := defs[name].(map[string]any)
		return target
	}
	return nil
}
