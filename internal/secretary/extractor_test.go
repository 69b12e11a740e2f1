package secretary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/clinic-secretary/internal/catalog"
)

func testExtractor(t *testing.T) *Extractor {
	t.Helper()
	loc := clinicLocation(t)
	return NewExtractor(catalog.Default(), func() time.Time { return time.Date(2025, 12, 8, 9, 0, 0, 0, loc) })
}

func TestExtractName(t *testing.T) {
	e := testExtractor(t)
	cases := map[string]string{
		"Меня зовут Анна":    "Анна",
		"анна петрова":       "Анна Петрова",
		"Вадим":              "Вадим",
		"Дарья":              "Дарья",
		"да":                 "",
		"завтра":             "",
		"Детский массаж":     "",
		"0501234567":         "",
		"я тебе говорил уже": "",
		"хочу массаж":        "",
		"завтра утром":       "",

		"Екатерина Смирнова":            "Екатерина Смирнова",
		"Римма Иванова":                 "Римма Иванова",
		"Иван Костин":                   "Иван Костин",
		"Олеся Веселова":                "Олеся Веселова",
		"меня зовут Екатерина Смирнова": "Екатерина Смирнова",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Name(in), in)
	}
}

func TestExtractPhone(t *testing.T) {
	e := testExtractor(t)
	cases := map[string]string{
		"0501234567":              "0501234567",
		"мой номер 050-123-45-67": "0501234567",
		"+972 50 123 4567":        "+972501234567",
		"+79123456789":            "+79123456789",
		"2025-12-09 в 11:00":      "",
		"привет":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Phone(in), in)
	}
}

func TestExtractService(t *testing.T) {
	e := testExtractor(t)
	assert.Equal(t, "Детский массаж", e.Service("Хочу детский массаж"))
	assert.Equal(t, "Консультация остеопата", e.Service("мне бы к остеопату"))
	assert.Equal(t, "Массаж для беременных", e.Service("массаж беременным"))
	assert.Equal(t, "Кинезиотейпирование", e.Service("нужны тейпы"))
	assert.Empty(t, e.Service("добрый день"))
}

func TestExtractSpecialist(t *testing.T) {
	e := testExtractor(t)
	cases := map[string]string{
		"к Аврааму":           "Авраам",
		"Екатерина врач":      "Екатерина",
		"хочу к Марии":        "Марии",
		"какой у вас врач":    "",
		"хочу детский массаж": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Specialist(in), in)
	}
}

func TestExtractDate(t *testing.T) {
	e := testExtractor(t)
	cases := map[string]string{
		"2025-12-15":           "2025-12-15",
		"2025-10-21 (вторник)": "2025-10-21",
		"15.12":                "15.12",
		"на 15.12.2025":        "15.12.2025",
		"45.13":                "",
		"завтра":               "2025-12-09",
		"послезавтра":          "2025-12-10",
		"в среду":              "2025-12-10",
		"в понедельник":        "2025-12-15",
		"когда-нибудь":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Date(in), in)
	}
}

func TestExtractDateAtUsesGivenClock(t *testing.T) {
	e := NewExtractor(catalog.Default(), func() time.Time { return time.Date(2025, 12, 8, 23, 30, 0, 0, time.UTC) })
	assert.Equal(t, "2025-12-08", e.Date("сегодня"))

	clinicNow := time.Date(2025, 12, 8, 23, 30, 0, 0, time.UTC).In(clinicLocation(t))
	assert.Equal(t, "2025-12-09", e.DateAt("сегодня", clinicNow))
	assert.Equal(t, "2025-12-10", e.DateAt("завтра", clinicNow))
	assert.Equal(t, "2025-12-10", e.ExtractAt("на завтра", Entities{}, clinicNow).Date)
}

func TestExtractTime(t *testing.T) {
	e := testExtractor(t)
	cases := map[string]string{
		"в 14:30":  "14:30",
		"9:00":     "9:00",
		"10 часов": "10:00",
		"25:00":    "",
		"вечером":  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Time(in), in)
	}
}

func TestExtractOnlyFillsEmptyFields(t *testing.T) {
	e := testExtractor(t)
	got := e.Extract("Меня зовут Борис, 0527654321", Entities{Name: "Анна"})
	assert.Empty(t, got.Name)
	assert.Equal(t, "0527654321", got.Phone)
}
