package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	parenthesized = regexp.MustCompile(`\s*\([^)]*\)`)
	isoDate       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	fullDate      = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4})$`)
	shortDate     = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})$`)
	clockPattern  = regexp.MustCompile(`^(\d{1,2})[:.\- ](\d{2})$`)
	hourPattern   = regexp.MustCompile(`^(\d{1,2})$`)
)

var relativeDays = map[string]int{
	"сегодня":     0,
	"завтра":      1,
	"послезавтра": 2,
	"today":       0,
	"tomorrow":    1,
}

// Accusative Russian forms first ("в среду"), then nominative and English.
var weekdayWords = []struct {
	word string
	day  time.Weekday
}{
	{"понедельник", time.Monday},
	{"вторник", time.Tuesday},
	{"среду", time.Wednesday},
	{"среда", time.Wednesday},
	{"четверг", time.Thursday},
	{"пятницу", time.Friday},
	{"пятница", time.Friday},
	{"субботу", time.Saturday},
	{"суббота", time.Saturday},
	{"воскресенье", time.Sunday},
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// ParseDate resolves the date spellings patients use relative to now and
// returns midnight of that day in now's location.
func ParseDate(text string, now time.Time) (time.Time, error) {
	clean := strings.ToLower(strings.TrimSpace(parenthesized.ReplaceAllString(text, "")))
	if clean == "" {
		return time.Time{}, ErrDateEmpty
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if m := isoDate.FindStringSubmatch(clean); m != nil {
		return buildDate(text, atoi(m[1]), atoi(m[2]), atoi(m[3]), now.Location())
	}
	if m := fullDate.FindStringSubmatch(clean); m != nil {
		return buildDate(text, atoi(m[3]), atoi(m[2]), atoi(m[1]), now.Location())
	}
	if m := shortDate.FindStringSubmatch(clean); m != nil {
		return buildDate(text, today.Year(), atoi(m[2]), atoi(m[1]), now.Location())
	}
	if offset, ok := relativeDays[clean]; ok {
		return today.AddDate(0, 0, offset), nil
	}
	for _, w := range weekdayWords {
		if strings.Contains(clean, w.word) {
			return NextWeekday(today, w.day), nil
		}
	}
	return time.Time{}, dateFormatError(text)
}

// NextWeekday returns the next occurrence of day strictly after today.
func NextWeekday(today time.Time, day time.Weekday) time.Time {
	ahead := int(day) - int(today.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return today.AddDate(0, 0, ahead)
}

func buildDate(text string, year, month, day int, loc *time.Location) (time.Time, error) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, dateFormatError(text)
	}
	return d, nil
}

func dateFormatError(text string) error {
	return fmt.Errorf("%w: %s. Используйте: ГГГГ-ММ-ДД, ДД.ММ.ГГГГ, 'сегодня', 'завтра' или день недели", ErrInvalidDate, text)
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On places the clock on day's calendar date.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// ParseTime accepts H:MM, H.MM, H-MM, "H MM" and a bare hour.
func ParseTime(text string) (Clock, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return Clock{}, ErrTimeEmpty
	}
	var c Clock
	if m := clockPattern.FindStringSubmatch(clean); m != nil {
		c = Clock{Hour: atoi(m[1]), Minute: atoi(m[2])}
	} else if m := hourPattern.FindStringSubmatch(clean); m != nil {
		c = Clock{Hour: atoi(m[1])}
	} else {
		return Clock{}, timeFormatError(text)
	}
	if c.Hour > 23 || c.Minute > 59 {
		return Clock{}, timeFormatError(text)
	}
	return c, nil
}

func timeFormatError(text string) error {
	return fmt.Errorf("%w: %s. Используйте: ЧЧ:ММ (например, 15:30)", ErrInvalidTime, text)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
