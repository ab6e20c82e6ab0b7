package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

func (m StringList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	ba, err := json.Marshal([]string(m))
	return string(ba), err
}

func (m *StringList) Scan(val interface{}) error {
	var ba []byte
	switch v := val.(type) {
	case nil:
		*m = StringList{}
		return nil
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return fmt.Errorf("unsupported StringList value %T", val)
	}
	t := []string{}
	if len(ba) > 0 {
		if err := json.Unmarshal(ba, &t); err != nil {
			return err
		}
	}
	*m = t
	return nil
}
