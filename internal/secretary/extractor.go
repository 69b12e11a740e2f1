package secretary

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wolfman30/clinic-secretary/internal/catalog"
)

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)меня зовут\s+([а-яёa-z\s]+)`),
		regexp.MustCompile(`(?i)имя\s+([а-яёa-z\s]+)`),
		regexp.MustCompile(`(?i)^([а-яёa-z][а-яёa-z\s]{1,30})\s*мое\s+имя`),
		regexp.MustCompile(`(?i)^([а-яёa-z]+\s+[а-яёa-z]+)$`),
		regexp.MustCompile(`(?i)^([а-яёa-z0-9]{2,20})$`),
	}

	// Words and phrases that look like a name to the patterns above but are
	// answers, complaints, services, specialists or dates.
	nameExclusions = []string{
		"да", "нет", "хорошо", "ладно", "привет", "спасибо",
		"уже говорил", "уже сказал", "свое имя", "тебе говорил",
		"я же", "не помню", "забыл", "повторяю",
		"на массаж", "на прием", "на сканирование", "на диагностику",
		"на консультацию", "консультацию",
		"к аврааму", "к екатерине", "к римме", "у авраама", "у екатерины", "у риммы",
		"массаж", "сканирование", "диагностика", "лечение", "консультация",
		"нутрициолога", "остеопата", "реабилитолога",
		"массажиста", "врача", "доктора", "специалиста",
		"авраам", "екатерина", "римма", "аврааму", "екатерине", "римме",
		"завтра", "сегодня", "послезавтра",
		"понедельник", "вторник", "среда", "среду", "четверг", "пятница", "пятницу",
		"суббота", "субботу", "воскресенье",
		"массаж детский", "массаж грудным", "массаж беременным", "массаж после",
		"консультация остеопата", "консультация реабилитолога", "консультация нутрициолога",
		"диагностика организма", "кинезиотейпирование", "тейпирование",
		"подбор комплекса", "упражнений", "комплекса", "подбор",
		"лечебный массаж", "классический", "шведский", "биорезонансным",
	}

	phoneNoise    = regexp.MustCompile(`[^\d+\-\s]`)
	phoneSeps     = regexp.MustCompile(`[\s\-]`)
	phoneDateTime = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}|\d{1,2}\s*:\s*\d{2}`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?972[0-9\s\-]{8,12}`),
		regexp.MustCompile(`0[5-9][0-9\s\-]{8}`),
		regexp.MustCompile(`\+?\d[0-9\s\-]{8,14}`),
	}

	specialistPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|[^а-яё])к\s+([а-яё]+)`),
		regexp.MustCompile(`(?:^|[^а-яё])у\s+([а-яё]+)`),
		regexp.MustCompile(`([а-яё]+)\s+специалист`),
		regexp.MustCompile(`([а-яё]+)\s+врач`),
		regexp.MustCompile(`([а-яё]+)\s+доктор`),
	}

	// Words captured by the specialist patterns that are not names.
	specialistStopwords = map[string]struct{}{
		"специалист": {}, "специалисту": {}, "врач": {}, "врачу": {}, "доктор": {}, "доктору": {},
		"вас": {}, "вам": {}, "нас": {}, "меня": {}, "мне": {}, "какому": {}, "кому": {},
		"массаж": {}, "массажу": {}, "массажисту": {}, "остеопату": {}, "реабилитологу": {},
		"нутрициологу": {}, "хороший": {}, "лучший": {}, "какой": {}, "другой": {},
	}

	isoDatePattern   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	dottedDate       = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?`)
	relativeDayWords = []struct {
		word   string
		offset int
	}{
		// послезавтра contains завтра, so it is checked first.
		{"послезавтра", 2},
		{"сегодня", 0},
		{"завтра", 1},
	}
	weekdayStems = []struct {
		word string
		day  time.Weekday
	}{
		{"понедельник", time.Monday},
		{"вторник", time.Tuesday},
		{"среду", time.Wednesday},
		{"среда", time.Wednesday},
		{"четверг", time.Thursday},
		{"пятниц", time.Friday},
		{"суббот", time.Saturday},
		{"воскресень", time.Sunday},
	}

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})\s*:\s*(\d{2})`),
		regexp.MustCompile(`(?i)^(\d{1,2})\s*ч`),
		regexp.MustCompile(`(?i)^(\d{1,2})\s+час`),
	}
)

// Extractor pulls slot values out of free-text Russian messages.
type Extractor struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewExtractor creates an extractor. now supplies "today" for relative dates
// and should return clinic-local time.
func NewExtractor(cat *catalog.Catalog, now func() time.Time) *Extractor {
	if cat == nil {
		cat = catalog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Extractor{catalog: cat, now: now}
}

// Extract returns values for the fields that are still empty in filled.
// Fields are tried in order name, phone, service, specialist, date, time.
func (e *Extractor) Extract(text string, filled Entities) Entities {
	return e.ExtractAt(text, filled, e.now())
}

// ExtractAt is Extract with relative dates resolved against now.
func (e *Extractor) ExtractAt(text string, filled Entities, now time.Time) Entities {
	var out Entities
	if filled.Name == "" {
		out.Name = e.Name(text)
	}
	if filled.Phone == "" {
		out.Phone = e.Phone(text)
	}
	if filled.Service == "" {
		out.Service = e.Service(text)
	}
	if filled.Specialist == "" {
		out.Specialist = e.Specialist(text)
	}
	if filled.Date == "" {
		out.Date = e.DateAt(text, now)
	}
	if filled.Time == "" {
		out.Time = e.Time(text)
	}
	return out
}

// Name finds a personal name, title-cased.
func (e *Extractor) Name(text string) string {
	clean := strings.TrimSpace(text)
	for _, p := range namePatterns {
		m := p.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		name := titleCase(strings.Join(strings.Fields(m[1]), " "))
		words := strings.Fields(name)
		if len([]rune(name)) < 2 || len(words) > 3 || !hasLetter(name) {
			continue
		}
		if e.notAName(strings.ToLower(name)) {
			continue
		}
		return name
	}
	return ""
}

func (e *Extractor) notAName(lower string) bool {
	words := strings.Fields(lower)
	for _, phrase := range nameExclusions {
		if lower == phrase {
			return true
		}
		if len(words) > 1 {
			continue
		}
		// Short words must match exactly, otherwise "да" would reject "Вадим".
		if len([]rune(phrase)) >= 5 && strings.Contains(lower, phrase) {
			return true
		}
	}
	if len(words) > 1 && e.hasRequestWord(words) {
		return true
	}
	// "Детский массаж" on its own is a service request, not a name.
	return e.isServiceTerm(lower)
}

// hasRequestWord reports whether a multi-word reply such as "хочу массаж"
// carries a whole excluded word. Specialist names are skipped so
// "Екатерина Смирнова" is still a patient name.
func (e *Extractor) hasRequestWord(words []string) bool {
	people := make(map[string]struct{})
	for _, sp := range e.catalog.Specialists() {
		people[strings.ToLower(sp.Name)] = struct{}{}
		if sp.Dative != "" {
			people[strings.ToLower(sp.Dative)] = struct{}{}
		}
	}
	for _, w := range words {
		if _, ok := people[w]; ok {
			continue
		}
		for _, phrase := range nameExclusions {
			if w == phrase {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) isServiceTerm(lower string) bool {
	for _, s := range e.catalog.Services() {
		if lower == strings.ToLower(s.Name) {
			return true
		}
		for _, kw := range s.Keywords {
			if lower == strings.ToLower(kw) {
				return true
			}
		}
	}
	return false
}

// titleCase builds a Caser per call; Casers are stateful.
func titleCase(s string) string {
	return cases.Title(language.Russian).String(s)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Phone finds a phone number and returns its digits with an optional
// leading plus.
func (e *Extractor) Phone(text string) string {
	clean := phoneDateTime.ReplaceAllString(text, " ")
	clean = phoneNoise.ReplaceAllString(clean, "")
	for _, p := range phonePatterns {
		m := p.FindString(clean)
		if m == "" {
			continue
		}
		phone := phoneSeps.ReplaceAllString(m, "")
		if n := len(phone); n >= 9 && n <= 15 {
			return phone
		}
	}
	return ""
}

// Service finds a catalog service, first by full name and then by keyword.
func (e *Extractor) Service(text string) string {
	lower := strings.ToLower(text)
	services := e.catalog.Services()
	for _, s := range services {
		if strings.Contains(lower, strings.ToLower(s.Name)) {
			return s.Name
		}
	}
	for _, s := range services {
		for _, kw := range s.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return s.Name
			}
		}
	}
	return ""
}

// Specialist finds a specialist by name or dative form, then by phrases such
// as "к Марии" or "Мария врач". Unknown names are returned title-cased so the
// booking step can report them.
func (e *Extractor) Specialist(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	specialists := e.catalog.Specialists()
	for _, sp := range specialists {
		if strings.Contains(lower, strings.ToLower(sp.Name)) {
			return sp.Name
		}
		if sp.Dative != "" && strings.Contains(lower, strings.ToLower(sp.Dative)) {
			return sp.Name
		}
	}
	for _, p := range specialistPatterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		word := m[1]
		if _, stop := specialistStopwords[word]; stop {
			continue
		}
		if sp, _, err := e.catalog.FindSpecialist(word); err == nil {
			return sp.Name
		}
		return titleCase(word)
	}
	return ""
}

// Date finds a date. ISO dates win over D.M, which win over relative words
// and weekdays, so "2025-10-21 (вторник)" yields the ISO part. Relative
// forms are resolved to YYYY-MM-DD against the extractor clock.
func (e *Extractor) Date(text string) string {
	return e.DateAt(text, e.now())
}

// DateAt is Date with "today" taken from now, which must already be in the
// clinic timezone.
func (e *Extractor) DateAt(text string, now time.Time) string {
	if m := isoDatePattern.FindString(text); m != "" {
		return m
	}
	if m := dottedDate.FindStringSubmatch(text); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			if m[3] != "" {
				return fmt.Sprintf("%d.%d.%s", day, month, m[3])
			}
			return fmt.Sprintf("%d.%d", day, month)
		}
	}

	lower := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, rd := range relativeDayWords {
		if strings.Contains(lower, rd.word) {
			return today.AddDate(0, 0, rd.offset).Format(time.DateOnly)
		}
	}
	for _, wd := range weekdayStems {
		if strings.Contains(lower, wd.word) {
			ahead := int(wd.day) - int(today.Weekday())
			if ahead <= 0 {
				ahead += 7
			}
			return today.AddDate(0, 0, ahead).Format(time.DateOnly)
		}
	}
	return ""
}

// Time finds a clock time and returns it as H:MM.
func (e *Extractor) Time(text string) string {
	clean := strings.TrimSpace(text)
	for _, p := range timePatterns {
		m := p.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		hour := atoi(m[1])
		minute := "00"
		if len(m) > 2 {
			minute = m[2]
		}
		if hour > 23 || atoi(minute) > 59 {
			continue
		}
		return fmt.Sprintf("%d:%s", hour, minute)
	}
	return ""
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
