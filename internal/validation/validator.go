// Package validation implements the booking rules: name and phone checks,
// date and time parsing, opening hours, holidays, lead time, overlapping
// appointments and free-slot enumeration.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-secretary/internal/catalog"
)

const suggestionCount = 5

// Field names used in Result.Fields.
const (
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldService    = "service"
	FieldSpecialist = "specialist"
	FieldDate       = "date"
	FieldTime       = "time"
)

// Input is a fully collected but unverified appointment request.
type Input struct {
	Name       string
	Phone      string
	Service    string
	Specialist string
	Date       string
	Time       string
}

// Data holds the normalized values of a request.
type Data struct {
	Name       string
	Phone      Phone
	Service    catalog.Service
	Specialist catalog.Specialist
	Date       time.Time
	Start      time.Time
}

// Result is the outcome of ValidateAppointment.
type Result struct {
	Valid       bool
	Errors      []string
	Warnings    []string
	Fields      []string // fields that failed, in check order
	Data        Data
	Suggestions []string
	Violation   *Violation
}

func (r *Result) fail(field, msg string) {
	r.Valid = false
	r.Fields = append(r.Fields, field)
	r.Errors = append(r.Errors, msg)
}

// HasField reports whether field failed validation.
func (r *Result) HasField(field string) bool {
	for _, f := range r.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Validator runs every rule over a collected request.
type Validator struct {
	catalog *catalog.Catalog
	checker *Checker
	slots   *SlotFinder
}

// NewValidator wires a validator.
func NewValidator(cat *catalog.Catalog, checker *Checker, slots *SlotFinder) *Validator {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Validator{catalog: cat, checker: checker, slots: slots}
}

// Catalog exposes the catalog snapshot used for lookups.
func (v *Validator) Catalog() *catalog.Catalog { return v.catalog }

// Slots exposes the slot finder.
func (v *Validator) Slots() *SlotFinder { return v.slots }

// ValidateAppointment checks identity fields first and, only when they all
// pass, the requested date and time.
func (v *Validator) ValidateAppointment(ctx context.Context, in Input) (*Result, error) {
	res := &Result{Valid: true}

	if err := ValidateName(in.Name); err != nil {
		res.fail(FieldName, "Имя: "+err.Error())
	} else {
		res.Data.Name = strings.TrimSpace(in.Name)
	}

	if phone, err := NormalizePhone(in.Phone); err != nil {
		res.fail(FieldPhone, "Телефон: "+err.Error())
	} else {
		res.Data.Phone = phone
	}

	if strings.TrimSpace(in.Service) == "" {
		res.fail(FieldService, "Услуга: Услуга не указана")
	} else if svc, partial, err := v.catalog.FindService(in.Service); err != nil {
		res.fail(FieldService, "Услуга: "+notFoundMessage("Услуга", "не найдена", in.Service, err))
	} else {
		res.Data.Service = svc
		if partial {
			res.Warnings = append(res.Warnings, "Услуга: Найдена услуга: "+svc.Name)
		}
	}

	if strings.TrimSpace(in.Specialist) == "" {
		res.fail(FieldSpecialist, "Специалист: Специалист не указан")
	} else if sp, partial, err := v.catalog.FindSpecialist(in.Specialist); err != nil {
		res.fail(FieldSpecialist, "Специалист: "+notFoundMessage("Специалист", "не найден", in.Specialist, err))
	} else {
		res.Data.Specialist = sp
		if partial {
			res.Warnings = append(res.Warnings, "Специалист: Найден специалист: "+sp.Name)
		}
	}

	if !res.Valid || v.checker == nil {
		return res, nil
	}

	now, loc, err := v.clinicNow(ctx)
	if err != nil {
		return nil, err
	}
	day, err := ParseDate(in.Date, now.In(loc))
	if err != nil {
		res.fail(FieldDate, err.Error())
		return res, nil
	}
	clock, err := ParseTime(in.Time)
	if err != nil {
		res.fail(FieldTime, err.Error())
		return res, nil
	}
	start := clock.On(day)
	duration := res.Data.Service.Duration()

	violation, err := v.checker.Check(ctx, Request{
		SpecialistID: res.Data.Specialist.ID,
		PatientPhone: res.Data.Phone.E164,
		Start:        start,
		Duration:     duration,
	})
	if err != nil {
		return nil, err
	}
	if violation != nil {
		res.Violation = violation
		field := FieldTime
		if violation.DateProblem() {
			field = FieldDate
		}
		res.fail(field, "Время: "+violation.Message)
		if v.slots != nil && violation.TimeProblem() {
			slots, err := v.slots.FreeSlots(ctx, res.Data.Specialist.ID, day, duration)
			if err != nil {
				return nil, err
			}
			res.Suggestions = SlotTimes(slots, suggestionCount)
		}
		return res, nil
	}

	res.Data.Date = day
	res.Data.Start = start
	return res, nil
}

func (v *Validator) clinicNow(ctx context.Context) (time.Time, *time.Location, error) {
	cfg, err := v.checker.config.Get(ctx)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("validation: load clinic config: %w", err)
	}
	return v.checker.Now(), cfg.Location(), nil
}

// Now returns the current time in the clinic timezone.
func (v *Validator) Now(ctx context.Context) (time.Time, error) {
	if v.checker == nil {
		return time.Now(), nil
	}
	now, loc, err := v.clinicNow(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return now.In(loc), nil
}

// CheckDay reports why day cannot be booked at all, or nil.
func (v *Validator) CheckDay(ctx context.Context, day time.Time) (*Violation, error) {
	if v.checker == nil {
		return nil, nil
	}
	return v.checker.CheckDay(ctx, day)
}

// ResolveDate parses a patient-typed date relative to today in the clinic
// timezone.
func (v *Validator) ResolveDate(ctx context.Context, text string) (time.Time, error) {
	if v.checker == nil {
		return ParseDate(text, time.Now())
	}
	now, loc, err := v.clinicNow(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return ParseDate(text, now.In(loc))
}

// SuggestDates returns up to n working days after from (scanning a week)
// that still have a free slot for duration.
func (v *Validator) SuggestDates(ctx context.Context, specialistID string, from time.Time, duration time.Duration, n int) ([]time.Time, error) {
	if v.slots == nil || n <= 0 {
		return nil, nil
	}
	cfg, err := v.checker.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("validation: load clinic config: %w", err)
	}
	day := cfg.DayStart(from)
	var out []time.Time
	for i := 1; i <= 7 && len(out) < n; i++ {
		candidate := day.AddDate(0, 0, i)
		if !cfg.IsBookableDay(candidate) {
			continue
		}
		slots, err := v.slots.FreeSlots(ctx, specialistID, candidate, duration)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// Summary renders a result the way the secretary shows it to patients.
func Summary(res *Result) string {
	if res.Valid {
		msg := "✅ Все данные корректны!"
		if len(res.Warnings) > 0 {
			msg += "\n⚠️ Предупреждения: " + strings.Join(res.Warnings, "; ")
		}
		return msg
	}
	var b strings.Builder
	b.WriteString("❌ Обнаружены ошибки:\n")
	for _, e := range res.Errors {
		b.WriteString("• " + e + "\n")
	}
	if len(res.Suggestions) > 0 {
		b.WriteString("\n💡 Рекомендуемые времена: " + strings.Join(res.Suggestions, ", "))
	}
	return strings.TrimSpace(b.String())
}

func notFoundMessage(label, verb, query string, err error) string {
	var nf *catalog.NotFoundError
	if errors.As(err, &nf) {
		return fmt.Sprintf("%s '%s' %s. Доступны: %s", label, query, verb, strings.Join(nf.Available, ", "))
	}
	return fmt.Sprintf("%s '%s' %s", label, query, verb)
}
