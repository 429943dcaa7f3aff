package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireLayout matches JavaScript's Date.prototype.toISOString
const wireLayout = "2006-01-02T15:04:05.000Z07:00"

// naive layouts carry no zone and are read as local time
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is an ISO-8601 instant as exchanged with the API
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// ParseTimestamp accepts RFC 3339 or a zone-less ISO-8601 date-time
func ParseTimestamp(v string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", v)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(wireLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(v)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
