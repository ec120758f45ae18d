package domain

import (
	"encoding/json"
	"errors"
)

// Manifest is a decoded package.json document.
// Values follow encoding/json generic decoding: map[string]any, []any,
// string, float64, bool and nil.
type Manifest map[string]any

// DecodeManifest parses package.json content.
func DecodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Join(ErrInvalidManifest, err)
	}
	if m == nil {
		return nil, ErrInvalidManifest
	}
	return m, nil
}

// Name returns the declared package name.
func (m Manifest) Name() string {
	return m.String("name")
}

// String returns the string value of a top-level field, or "" if absent or not a string.
func (m Manifest) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// StringMap returns a top-level object field with its string values.
// Non-string values are skipped.
func (m Manifest) StringMap(key string) map[string]string {
	obj, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Section returns a top-level object field.
func (m Manifest) Section(key string) map[string]any {
	obj, _ := m[key].(map[string]any)
	return obj
}

// Clone returns a deep copy of the manifest.
func (m Manifest) Clone() Manifest {
	if m == nil {
		return nil
	}
	return Manifest(cloneMap(m))
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// stringList converts a JSON value holding a string or a list of strings.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}
