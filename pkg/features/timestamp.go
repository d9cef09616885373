package features

import (
	"strings"
	"time"
)

// Timestamp keeps whether the source string carried a UTC offset. Naive values
// are held as UTC wall-clock times and may only be compared with other naive values.
type Timestamp struct {
	time.Time
	Naive bool
}

var awareLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 datetimes with or without an offset.
func ParseTimestamp(raw string) (Timestamp, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Timestamp{}, inputErrorf("empty timestamp")
	}
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return Timestamp{Time: t, Naive: true}, nil
		}
	}
	return Timestamp{}, inputErrorf("invalid ISO-8601 timestamp %q", raw)
}

// Comparable reports a temporal error when one timestamp is naive and the other is not.
func (t Timestamp) Comparable(other Timestamp) error {
	if t.Naive != other.Naive {
		return temporalErrorf("cannot compare offset-naive and offset-aware timestamps (%s vs %s)", t.describe(), other.describe())
	}
	return nil
}

func (t Timestamp) Add(d time.Duration) Timestamp {
	return Timestamp{Time: t.Time.Add(d), Naive: t.Naive}
}

func (t Timestamp) Sub(other Timestamp) time.Duration {
	return t.Time.Sub(other.Time)
}

func (t Timestamp) String() string {
	if t.Naive {
		return t.Time.Format("2006-01-02 15:04:05")
	}
	return t.Time.Format("2006-01-02 15:04:05-07:00")
}

func (t Timestamp) describe() string {
	kind := "aware"
	if t.Naive {
		kind = "naive"
	}
	return t.String() + " " + kind
}
