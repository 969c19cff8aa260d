package worldupdate

import "errors"

// errInvalidPayload marks any shape violation found while decoding. Parse
// collapses it into its boolean result; callers never see it.
var errInvalidPayload = errors.New("invalid world-update payload")

// errMissingTarget rejects an apply call that names neither scope
var errMissingTarget = errors.New("either a user ID or a graph ID is required")

// requiredString reads a key that must be present and a string
func requiredString(m map[string]any, key string) (string, bool) {
	v, present := m[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// optionalString reads a key that may be absent but must be a string when
// present. The second return is false only on a type violation.
func optionalString(m map[string]any, key string) (string, bool) {
	v, present := m[key]
	if !present {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

// optionalMap reads a key that may be absent but must be an object when
// present.
func optionalMap(m map[string]any, key string) (map[string]any, bool) {
	v, present := m[key]
	if !present {
		return nil, true
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}
