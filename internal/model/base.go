package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a set of tags stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to unmarshal string list: %w", err)
	}
	*l = out
	return nil
}

// Contains reports whether tag is in the list.
func (l StringList) Contains(tag string) bool {
	for _, v := range l {
		if v == tag {
			return true
		}
	}
	return false
}
