package request

import (
	"reflect"
	"strings"
	"sync"

	"github.com/kbukum/openbatch/errors"
	"github.com/kbukum/openbatch/util"
)

// Merge returns a copy of common with overrides applied on top. Overrides are
// keyed by JSON field name and win over the common value. Unknown keys and
// values of the wrong type fail with INVALID_FIELD. The result is not
// validated.
func Merge(common Request, overrides map[string]any) (Request, error) {
	if common == nil {
		return nil, errors.MissingField("request")
	}
	if len(overrides) == 0 {
		return common.Clone(), nil
	}

	known := fieldNames(reflect.TypeOf(common))
	for _, key := range util.SortedKeys(overrides) {
		if _, ok := known[key]; !ok {
			return nil, errors.InvalidField(key, overrides[key], "unknown option for "+string(common.Endpoint()))
		}
	}

	base, err := toMap(common)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		if v == nil {
			delete(base, k)
			continue
		}
		base[k] = v
	}
	data, err := Encode(base)
	if err != nil {
		return nil, errors.InvalidInput("options", err.Error()).WithCause(err)
	}

	var out Request
	switch common.Kind() {
	case KindChatCompletions:
		out = &ChatCompletionsRequest{}
	case KindResponses:
		out = &ResponsesRequest{}
	case KindEmbeddings:
		out = &EmbeddingsRequest{}
	default:
		return nil, errors.Internal(nil).WithDetail("kind", string(common.Kind()))
	}
	if err := decodeStrict(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

var fieldCache sync.Map

// fieldNames returns the JSON names a request struct accepts, flattening
// embedded structs.
func fieldNames(t reflect.Type) map[string]struct{} {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	names := make(map[string]struct{})
	collectFields(t, names)
	fieldCache.Store(t, names)
	return names
}

func collectFields(t reflect.Type, names map[string]struct{}) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, names)
			continue
		}
		if !f.IsExported() || tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}
}
