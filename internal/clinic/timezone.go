package clinic

import (
	"strings"

	// Embedded zone data keeps clinic time correct on minimal images.
	_ "time/tzdata"
)

var countryTimezones = map[string]string{
	"IL": "Asia/Jerusalem",
	"RU": "Europe/Moscow",
	"UA": "Europe/Kiev",
	"US": "America/New_York",
}

// TimezoneForCountry maps a country code to its IANA zone, UTC when unknown.
func TimezoneForCountry(country string) string {
	if tz, ok := countryTimezones[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return tz
	}
	return "UTC"
}
