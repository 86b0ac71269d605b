package crypto

import "encoding/json"

// ParseJSON decodes raw into a generic object.
// Malformed input and non-object JSON both yield an empty, non-nil map.
func ParseJSON(raw []byte) map[string]any {
	obj := make(map[string]any)
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return make(map[string]any)
	}
	return obj
}

// DecodeJSON decodes raw into a T, returning the zero value when raw is
// empty or cannot be decoded. Callers cannot tell the two cases apart.
func DecodeJSON[T any](raw []byte) T {
	var v T
	if len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}
