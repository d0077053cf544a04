package redisdoc

import "encoding/json"

// encodeFields flattens a generic document source into the string-typed
// field map a Redis hash requires, JSON-encoding every value so that
// nested slices and maps (roles, metadata) round-trip exactly.
func encodeFields(source map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(source))
	for k, v := range source {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = string(b)
	}
	return fields, nil
}

// decodeFields reverses encodeFields, skipping the internal version
// bookkeeping field so it never leaks into a decoded document source.
func decodeFields(fields map[string]string) map[string]any {
	source := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == versionField {
			continue
		}
		var val any
		if err := json.Unmarshal([]byte(v), &val); err != nil {
			continue
		}
		source[k] = val
	}
	return source
}
