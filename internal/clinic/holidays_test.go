package clinic

import (
	"testing"
	"time"
)

func TestHolidayOn(t *testing.T) {
	tests := []struct {
		country string
		day     time.Time
		want    string
		ok      bool
	}{
		{"IL", time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), "Рош ха-Шана", true},
		{"il", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "Новый год", true},
		{"RU", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "Новогодние каникулы", true},
		{"UA", time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC), "День независимости", true},
		{"US", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), "Independence Day", true},
		{"IL", time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), "", false},
		{"FR", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "", false},
	}
	for _, tt := range tests {
		name, ok := HolidayOn(tt.day, tt.country)
		if ok != tt.ok || name != tt.want {
			t.Errorf("HolidayOn(%s, %s) = %q,%v want %q,%v", tt.day.Format(time.DateOnly), tt.country, name, ok, tt.want, tt.ok)
		}
	}
}
