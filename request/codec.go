package request

import (
	"bytes"
	stderrors "errors"

	"github.com/goccy/go-json"

	"github.com/kbukum/openbatch/errors"
)

// Encode marshals v without HTML escaping. Map keys are sorted, so equal
// values always encode to identical bytes.
func Encode(v any) ([]byte, error) {
	return json.MarshalWithOption(v, json.DisableHTMLEscape())
}

// Decode unmarshals data into v.
func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// decodeStrict unmarshals data into v, rejecting keys v does not declare.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			return errors.InvalidField(typeErr.Field, typeErr.Value, "must be of type "+typeErr.Type.String()).WithCause(err)
		}
		return errors.InvalidInput("options", err.Error()).WithCause(err)
	}
	return nil
}

// toMap converts v into its generic JSON object form.
func toMap(v any) (map[string]any, error) {
	data, err := Encode(v)
	if err != nil {
		return nil, errors.Internal(err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Internal(err)
	}
	return m, nil
}
