package validation

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatal(err)
	}
	// Monday.
	now := time.Date(2025, 12, 8, 9, 0, 0, 0, loc)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, loc) }

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-12-10", day(2025, 12, 10)},
		{"2025-12-10 (среда)", day(2025, 12, 10)},
		{"10.12.2025", day(2025, 12, 10)},
		{"10/12/2025", day(2025, 12, 10)},
		{"10-12-2025", day(2025, 12, 10)},
		{"24.12", day(2025, 12, 24)},
		{"24/12", day(2025, 12, 24)},
		{"Сегодня", day(2025, 12, 8)},
		{"завтра", day(2025, 12, 9)},
		{"послезавтра", day(2025, 12, 10)},
		{"tomorrow", day(2025, 12, 9)},
		{"в среду", day(2025, 12, 10)},
		{"понедельник", day(2025, 12, 15)},
		{"sunday", day(2025, 12, 14)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in, now)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	now := time.Date(2025, 12, 8, 9, 0, 0, 0, time.UTC)
	for _, in := range []string{"когда-нибудь", "31.02.2025", "2025-13-01"} {
		if _, err := ParseDate(in, now); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", in, err)
		}
	}
	if _, err := ParseDate(" ", now); !errors.Is(err, ErrDateEmpty) {
		t.Errorf("expected ErrDateEmpty, got %v", err)
	}
}

func TestParseTime(t *testing.T) {
	tests := map[string]string{
		"15:30": "15:30",
		"9:05":  "09:05",
		"15.30": "15:30",
		"15-30": "15:30",
		"15 30": "15:30",
		"15":    "15:00",
	}
	for in, want := range tests {
		got, err := ParseTime(in)
		if err != nil {
			t.Errorf("ParseTime(%q) error: %v", in, err)
			continue
		}
		if got.String() != want {
			t.Errorf("ParseTime(%q) = %s, want %s", in, got, want)
		}
	}
	for _, in := range []string{"25:00", "12:60", "полдень"} {
		if _, err := ParseTime(in); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("ParseTime(%q) err = %v, want ErrInvalidTime", in, err)
		}
	}
}
