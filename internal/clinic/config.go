// Package clinic holds the clinic's working schedule, holiday calendar and
// timezone, and a Redis-backed store for the editable copy.
package clinic

import (
	"strings"
	"time"
)

// DayHours represents the opening hours for a single day.
// Nil means the clinic is closed that day.
type DayHours struct {
	Open  string `json:"open"`  // "10:00" in 24-hour format
	Close string `json:"close"` // "19:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// Config holds clinic-specific configuration.
type Config struct {
	Name          string        `json:"name"`
	Country       string        `json:"country"`            // ISO code used for holidays, e.g. "IL"
	Timezone      string        `json:"timezone,omitempty"` // empty: derived from Country
	Phone         string        `json:"phone,omitempty"`
	Address       string        `json:"address,omitempty"`
	City          string        `json:"city,omitempty"`
	BusinessHours BusinessHours `json:"business_hours"`
	AdminEmails   []string      `json:"admin_emails,omitempty"`
}

// maxWorkingDayScan bounds NextWorkingDay.
const maxWorkingDayScan = 14

// DefaultConfig returns the clinic defaults: Sunday to Thursday 10:00-19:00,
// closed Friday and Saturday.
func DefaultConfig() *Config {
	workday := func() *DayHours { return &DayHours{Open: "10:00", Close: "19:00"} }
	return &Config{
		Name:    "Центр \"Новая Жизнь\"",
		Country: "IL",
		City:    "Иерусалим",
		BusinessHours: BusinessHours{
			Sunday:    workday(),
			Monday:    workday(),
			Tuesday:   workday(),
			Wednesday: workday(),
			Thursday:  workday(),
		},
	}
}

// GetHoursForDay returns the hours for a given weekday.
func (b *BusinessHours) GetHoursForDay(weekday time.Weekday) *DayHours {
	switch weekday {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

// HasAnyHours reports whether at least one weekday has hours configured.
func (b *BusinessHours) HasAnyHours() bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if b.GetHoursForDay(d) != nil {
			return true
		}
	}
	return false
}

// Location resolves the clinic timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		name = TimezoneForCountry(c.Country)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayStart returns midnight of t's calendar day in the clinic timezone.
func (c *Config) DayStart(t time.Time) time.Time {
	local := t.In(c.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// HoursOn returns the opening and closing instants for the calendar day of
// day. ok is false on closed days or when the hours cannot be parsed.
func (c *Config) HoursOn(day time.Time) (open, close time.Time, ok bool) {
	start := c.DayStart(day)
	hours := c.BusinessHours.GetHoursForDay(start.Weekday())
	if hours == nil {
		return time.Time{}, time.Time{}, false
	}
	openClock, err := time.Parse("15:04", hours.Open)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeClock, err := time.Parse("15:04", hours.Close)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	open = atClock(start, openClock)
	close = atClock(start, closeClock)
	if !close.After(open) {
		return time.Time{}, time.Time{}, false
	}
	return open, close, true
}

// IsWorkDay reports whether the weekday of day has opening hours.
func (c *Config) IsWorkDay(day time.Time) bool {
	_, _, ok := c.HoursOn(day)
	return ok
}

// Holiday returns the holiday name for day in the clinic country.
func (c *Config) Holiday(day time.Time) (string, bool) {
	return HolidayOn(c.DayStart(day), c.Country)
}

// IsBookableDay reports whether appointments may be placed on day.
func (c *Config) IsBookableDay(day time.Time) bool {
	if !c.IsWorkDay(day) {
		return false
	}
	_, holiday := c.Holiday(day)
	return !holiday
}

// IsOpenAt reports whether t falls inside the opening hours of its day.
func (c *Config) IsOpenAt(t time.Time) bool {
	open, close, ok := c.HoursOn(t)
	if !ok {
		return false
	}
	return !t.Before(open) && t.Before(close)
}

// NextWorkingDay returns the first bookable day after day. When none is found
// within two weeks it returns the following day.
func (c *Config) NextWorkingDay(day time.Time) time.Time {
	start := c.DayStart(day)
	for i := 1; i <= maxWorkingDayScan; i++ {
		candidate := start.AddDate(0, 0, i)
		if c.IsBookableDay(candidate) {
			return candidate
		}
	}
	return start.AddDate(0, 0, 1)
}

func atClock(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

var dayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// DayName returns the Russian name of a weekday.
func DayName(d time.Weekday) string {
	return dayNames[d]
}
