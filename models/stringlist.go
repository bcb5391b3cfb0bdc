package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores an ordered sequence of strings in a single text column.
// Some historical rows carry the list double-encoded (a JSON array serialized
// inside a JSON string); Scan unwraps one level of that so callers always see
// a plain []string.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err == nil {
		*l = out
		return nil
	}

	// Double-encoded form: the column holds a JSON string whose content is
	// itself a JSON array.
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return fmt.Errorf("malformed string list column: %w", err)
	}
	if inner == "" {
		*l = nil
		return nil
	}
	if err := json.Unmarshal([]byte(inner), &out); err != nil {
		// Plain string value, not a nested array. Treat it as a single entry.
		*l = []string{inner}
		return nil
	}
	*l = out
	return nil
}
