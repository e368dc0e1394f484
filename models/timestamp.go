package models

import (
	"encoding/json"
	"reflect"
	"time"
)

// Timestamp is an ISO-8601 date-time read from a request body. The UTC
// offset is optional; values without one are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

func ParseTimestamp(value string) (Timestamp, error) {
	var err error
	for _, layout := range timestampLayouts {
		t, perr := time.Parse(layout, value)
		if perr == nil {
			return Timestamp{Time: t}, nil
		}
		err = perr
	}
	return Timestamp{}, err
}

// UnmarshalJSON reports bad input as a *json.UnmarshalTypeError so the
// decoder attaches the field name.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: reflect.TypeOf(Timestamp{})}
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(Timestamp{})}
	}
	*t = parsed
	return nil
}

// TimePtr returns nil for a nil receiver.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
