package core

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Timestamp represents a point in time, always normalized to UTC
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC())
}

// Now returns the current timestamp
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = NewTimestamp(tm)
	return nil
}

// Value stores timestamps as time.Time so both postgres and sqlite drivers accept them.
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time(), nil
}

// Scan accepts the representations returned by the supported SQL drivers.
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = NewTimestamp(v)
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		*t = Timestamp{}
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
	return nil
}

func (t *Timestamp) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if tm, err := time.Parse(layout, s); err == nil {
			*t = NewTimestamp(tm)
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}
