package clinic

import (
	"testing"
	"time"
)

func jerusalem(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestDefaultScheduleIsOpenAt(t *testing.T) {
	cfg := DefaultConfig()
	loc := jerusalem(t)

	cases := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"monday 10:00", time.Date(2025, 12, 8, 10, 0, 0, 0, loc), true},
		{"monday 18:59", time.Date(2025, 12, 8, 18, 59, 0, 0, loc), true},
		{"monday 19:00 closed", time.Date(2025, 12, 8, 19, 0, 0, 0, loc), false},
		{"monday 09:30 closed", time.Date(2025, 12, 8, 9, 30, 0, 0, loc), false},
		{"sunday is a work day", time.Date(2025, 12, 7, 12, 0, 0, 0, loc), true},
		{"friday closed", time.Date(2025, 12, 5, 12, 0, 0, 0, loc), false},
		{"saturday closed", time.Date(2025, 12, 6, 12, 0, 0, 0, loc), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.IsOpenAt(tc.at); got != tc.open {
				t.Fatalf("IsOpenAt(%s) = %v, want %v", tc.at, got, tc.open)
			}
		})
	}
}

func TestHoursOnUsesClinicTimezone(t *testing.T) {
	cfg := DefaultConfig()
	loc := jerusalem(t)

	// 23:30 UTC on Sunday is already Monday in Jerusalem.
	utc := time.Date(2025, 12, 7, 23, 30, 0, 0, time.UTC)
	open, closeAt, ok := cfg.HoursOn(utc)
	if !ok {
		t.Fatal("expected hours for Monday")
	}
	want := time.Date(2025, 12, 8, 10, 0, 0, 0, loc)
	if !open.Equal(want) {
		t.Fatalf("open = %s, want %s", open, want)
	}
	if closeAt.Sub(open) != 9*time.Hour {
		t.Fatalf("expected 9h working day, got %s", closeAt.Sub(open))
	}
}

func TestNextWorkingDaySkipsWeekendAndHolidays(t *testing.T) {
	cfg := DefaultConfig()
	loc := jerusalem(t)

	// Wednesday before Yom Kippur (Thursday), then Friday/Saturday closed.
	wed := time.Date(2025, 10, 8, 15, 0, 0, 0, loc)
	next := cfg.NextWorkingDay(wed)
	want := time.Date(2025, 10, 12, 0, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("NextWorkingDay = %s, want %s", next, want)
	}
}

func TestNextWorkingDayFallsBackWhenAlwaysClosed(t *testing.T) {
	cfg := &Config{Country: "IL"}
	loc := jerusalem(t)
	day := time.Date(2025, 12, 8, 0, 0, 0, 0, loc)
	if got := cfg.NextWorkingDay(day); !got.Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("expected fallback to next day, got %s", got)
	}
}

func TestIsBookableDay(t *testing.T) {
	cfg := DefaultConfig()
	loc := jerusalem(t)
	if cfg.IsBookableDay(time.Date(2025, 10, 9, 12, 0, 0, 0, loc)) {
		t.Fatal("Yom Kippur must not be bookable")
	}
	if !cfg.IsBookableDay(time.Date(2025, 10, 8, 12, 0, 0, 0, loc)) {
		t.Fatal("regular Wednesday must be bookable")
	}
}

func TestLocationFallbacks(t *testing.T) {
	if got := (&Config{Country: "RU"}).Location().String(); got != "Europe/Moscow" {
		t.Fatalf("expected Moscow, got %s", got)
	}
	if got := (&Config{Timezone: "Not/AZone"}).Location(); got != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", got)
	}
	if got := TimezoneForCountry("xx"); got != "UTC" {
		t.Fatalf("expected UTC for unknown country, got %s", got)
	}
}

func TestHoursOnRejectsInvertedHours(t *testing.T) {
	cfg := &Config{BusinessHours: BusinessHours{Monday: &DayHours{Open: "19:00", Close: "10:00"}}}
	if _, _, ok := cfg.HoursOn(time.Date(2025, 12, 8, 12, 0, 0, 0, time.UTC)); ok {
		t.Fatal("expected inverted hours to be treated as closed")
	}
}

func TestDayName(t *testing.T) {
	if DayName(time.Friday) != "Пятница" {
		t.Fatalf("unexpected name %q", DayName(time.Friday))
	}
}
