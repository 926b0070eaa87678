package entity

import (
	"encoding/json"
	"time"
)

// NullTime is a timestamp that may be absent. The zero value means "no time";
// it is never replaced by a default date.
type NullTime struct {
	Time  time.Time
	Valid bool
}

func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

// Before reports whether both times are present and n is before o.
func (n NullTime) Before(o NullTime) bool {
	return n.Valid && o.Valid && n.Time.Before(o.Time)
}

func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time.Format(time.RFC3339))
}

func (n *NullTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*n = NewNullTime(t)
	return nil
}
