package clinic

import (
	"strings"
	"time"
)

type monthDay struct {
	month time.Month
	day   int
}

// Fixed-date holidays per country. Movable feasts are approximated by the
// dates the clinic closes on.
var holidays = map[string]map[monthDay]string{
	"IL": {
		{time.January, 1}:    "Новый год",
		{time.May, 14}:       "День независимости Израиля",
		{time.September, 30}: "Рош ха-Шана",
		{time.October, 9}:    "Йом Кипур",
	},
	"RU": {
		{time.January, 1}:   "Новый год",
		{time.January, 2}:   "Новогодние каникулы",
		{time.January, 3}:   "Новогодние каникулы",
		{time.January, 4}:   "Новогодние каникулы",
		{time.January, 5}:   "Новогодние каникулы",
		{time.January, 6}:   "Новогодние каникулы",
		{time.January, 7}:   "Новогодние каникулы",
		{time.January, 8}:   "Новогодние каникулы",
		{time.February, 23}: "День защитника Отечества",
		{time.March, 8}:     "Международный женский день",
		{time.May, 1}:       "Праздник Весны и Труда",
		{time.May, 9}:       "День Победы",
		{time.June, 12}:     "День России",
		{time.November, 4}:  "День народного единства",
	},
	"UA": {
		{time.January, 1}: "Новый год",
		{time.January, 7}: "Рождество",
		{time.March, 8}:   "Международный женский день",
		{time.May, 1}:     "День труда",
		{time.May, 9}:     "День победы над нацизмом",
		{time.June, 28}:   "День Конституции",
		{time.August, 24}: "День независимости",
	},
	"US": {
		{time.January, 1}:   "New Year's Day",
		{time.July, 4}:      "Independence Day",
		{time.December, 25}: "Christmas Day",
	},
}

// HolidayOn reports whether day is a public holiday in country.
func HolidayOn(day time.Time, country string) (string, bool) {
	table, ok := holidays[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return "", false
	}
	name, ok := table[monthDay{day.Month(), day.Day()}]
	return name, ok
}
