package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value serializes metadata to JSONB for storage.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan deserializes metadata from a JSONB column.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata source type %T", src)
	}

	return json.Unmarshal(data, m)
}
