package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores a string slice as a JSON text column on every driver.
// Values written by PostgreSQL array literals ({a,b}) are still readable.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return a.parse(string(v))
	case string:
		return a.parse(v)
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) parse(s string) error {
	switch {
	case strings.HasPrefix(s, "["):
		return json.Unmarshal([]byte(s), a)
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		body := strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		if body == "" {
			*a = StringArray{}
			return nil
		}
		parts := strings.Split(body, ",")
		for i, p := range parts {
			parts[i] = strings.Trim(p, `"`)
		}
		*a = parts
		return nil
	case s == "":
		*a = StringArray{}
		return nil
	default:
		*a = StringArray{s}
		return nil
	}
}

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}
