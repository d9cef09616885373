package features

import (
	"testing"
	"time"
)

func TestParseTimestampForms(t *testing.T) {
	cases := []struct {
		in    string
		naive bool
		want  time.Time
	}{
		{"2025-01-01T08:30:00", true, time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-01-01 08:30:00", true, time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-01-01T08:30", true, time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-01-01", true, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-01-01T08:30:00Z", false, time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-01-01T10:30:00+02:00", false, time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-01-01 10:30:00+02:00", false, time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		ts, err := ParseTimestamp(tc.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tc.in, err)
		}
		if ts.Naive != tc.naive {
			t.Errorf("ParseTimestamp(%q).Naive = %v, want %v", tc.in, ts.Naive, tc.naive)
		}
		if !ts.Time.Equal(tc.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.in, ts.Time, tc.want)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2025-13-01T00:00:00"} {
		if _, err := ParseTimestamp(in); !IsInputError(err) {
			t.Errorf("ParseTimestamp(%q) error = %v, want input error", in, err)
		}
	}
}

func TestComparableRejectsMixedKinds(t *testing.T) {
	naive, _ := ParseTimestamp("2025-01-01T00:00:00")
	aware, _ := ParseTimestamp("2025-01-01T00:00:00Z")
	if err := naive.Comparable(aware); KindOf(err) != KindTemporal {
		t.Fatalf("expected temporal error, got %v", err)
	}
	if err := aware.Comparable(aware); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
