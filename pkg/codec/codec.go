// Package codec maps collections to and from the single string stored under
// their key. Decoding is lenient: a missing or malformed value yields the
// collection's empty form instead of an error.
package codec

import (
	"encoding/json"
	"fmt"
)

// Encode serializes v. The output is deterministic for a given value, so
// re-encoding a modified collection reproduces the same bytes every time.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(data), nil
}

// DecodeSlice parses a stored JSON array. It never fails: absent, empty, or
// malformed input returns an empty, non-nil slice. valid is false only when
// a value was present but could not be parsed.
func DecodeSlice[T any](raw string, present bool) (items []T, valid bool) {
	if !present || raw == "" {
		return []T{}, true
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []T{}, false
	}
	if items == nil {
		// "null" decodes to a nil slice
		items = []T{}
	}
	return items, true
}
