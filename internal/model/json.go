package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

var errJSONScan = errors.New("failed to unmarshal jsonb value")

// JSONList 以 jsonb 数组形式存储的切片
type JSONList[T any] []T

func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal([]T(l))
}

func (l *JSONList[T]) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errJSONScan
	}
}
