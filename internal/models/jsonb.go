package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonbValue marshals a document column for storage.
func jsonbValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return data, nil
}

// jsonbScan unmarshals a document column from the driver representation.
func jsonbScan(src interface{}, dest interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
