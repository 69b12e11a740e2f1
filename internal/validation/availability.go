package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-secretary/internal/clinic"
)

// ViolationKind classifies why a requested time cannot be booked.
type ViolationKind string

const (
	KindPastDate        ViolationKind = "past_date"
	KindBeyondHorizon   ViolationKind = "beyond_horizon"
	KindClosedDay       ViolationKind = "closed_day"
	KindHoliday         ViolationKind = "holiday"
	KindOutsideHours    ViolationKind = "outside_hours"
	KindTooSoon         ViolationKind = "too_soon"
	KindOverrunsClosing ViolationKind = "overruns_closing"
	KindSpecialistBusy  ViolationKind = "specialist_busy"
	KindPatientBusy     ViolationKind = "patient_busy"
)

// Violation is a broken availability rule with its patient-facing message.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

func (v *Violation) Error() string { return v.Message }

// DateProblem reports whether another day has to be chosen.
func (v *Violation) DateProblem() bool {
	switch v.Kind {
	case KindPastDate, KindBeyondHorizon, KindClosedDay, KindHoliday:
		return true
	}
	return false
}

// TimeProblem reports whether another time on the same day may work.
func (v *Violation) TimeProblem() bool {
	switch v.Kind {
	case KindOutsideHours, KindTooSoon, KindOverrunsClosing, KindSpecialistBusy, KindPatientBusy:
		return true
	}
	return false
}

// ConfigSource yields the current clinic schedule. *clinic.Store satisfies it.
type ConfigSource interface {
	Get(ctx context.Context) (*clinic.Config, error)
}

type staticConfig struct{ cfg *clinic.Config }

func (s staticConfig) Get(context.Context) (*clinic.Config, error) { return s.cfg, nil }

// StaticConfig wraps a fixed clinic config.
func StaticConfig(cfg *clinic.Config) ConfigSource {
	if cfg == nil {
		cfg = clinic.DefaultConfig()
	}
	return staticConfig{cfg: cfg}
}

// Interval is a booked time range, end exclusive.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the interval.
func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && end.After(i.Start)
}

// BusyQuery selects pending and confirmed appointments in a window, either
// for a specialist or for a patient phone.
type BusyQuery struct {
	SpecialistID string
	PatientPhone string
	From         time.Time
	To           time.Time
}

// BusyLister lists occupied intervals.
type BusyLister interface {
	ListBusy(ctx context.Context, q BusyQuery) ([]Interval, error)
}

// Request is a candidate appointment.
type Request struct {
	SpecialistID string
	PatientPhone string
	Start        time.Time
	Duration     time.Duration
}

// Options tunes the availability rules.
type Options struct {
	Buffer      time.Duration // minimum lead time for same-day bookings
	HorizonDays int
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Buffer <= 0 {
		o.Buffer = time.Hour
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = 365
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Checker applies schedule and overlap rules to a candidate appointment.
type Checker struct {
	config ConfigSource
	busy   BusyLister
	opts   Options
}

// NewChecker wires a checker.
func NewChecker(config ConfigSource, busy BusyLister, opts Options) *Checker {
	if config == nil {
		config = StaticConfig(nil)
	}
	return &Checker{config: config, busy: busy, opts: opts.withDefaults()}
}

// Now returns the checker clock.
func (c *Checker) Now() time.Time { return c.opts.Now() }

// CheckDay applies the calendar rules alone: past date, booking horizon,
// closed weekday and holiday.
func (c *Checker) CheckDay(ctx context.Context, day time.Time) (*Violation, error) {
	cfg, err := c.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("validation: load clinic config: %w", err)
	}
	return c.checkDay(cfg, cfg.DayStart(day)), nil
}

func (c *Checker) checkDay(cfg *clinic.Config, day time.Time) *Violation {
	today := cfg.DayStart(c.opts.Now())
	if day.Before(today) {
		return &Violation{Kind: KindPastDate, Message: "Нельзя записаться на прошедшую дату"}
	}
	if day.After(today.AddDate(0, 0, c.opts.HorizonDays)) {
		return &Violation{Kind: KindBeyondHorizon, Message: "Нельзя записаться более чем на год вперед"}
	}
	if _, _, ok := cfg.HoursOn(day); !ok {
		return &Violation{
			Kind: KindClosedDay,
			Message: fmt.Sprintf("Центр не работает в выходные дни (%s). Ближайший рабочий день: %s",
				clinic.DayName(day.Weekday()), cfg.NextWorkingDay(day).Format("02.01.2006")),
		}
	}
	if name, holiday := cfg.Holiday(day); holiday {
		return &Violation{
			Kind: KindHoliday,
			Message: fmt.Sprintf("Центр не работает в праздничные дни (%s). Ближайший рабочий день: %s",
				name, cfg.NextWorkingDay(day).Format("02.01.2006")),
		}
	}
	return nil
}

// Check returns the first violated rule, or nil when the slot is bookable.
// Rules run in order: date, opening hours, lead time, closing time, overlaps.
func (c *Checker) Check(ctx context.Context, req Request) (*Violation, error) {
	cfg, err := c.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("validation: load clinic config: %w", err)
	}
	loc := cfg.Location()
	now := c.opts.Now().In(loc)
	start := req.Start.In(loc)
	end := start.Add(req.Duration)
	today := cfg.DayStart(now)
	day := cfg.DayStart(start)

	if v := c.checkDay(cfg, day); v != nil {
		return v, nil
	}
	open, closeAt, _ := cfg.HoursOn(day)
	if start.Before(open) || !start.Before(closeAt) {
		return &Violation{
			Kind:    KindOutsideHours,
			Message: fmt.Sprintf("Центр работает с %s до %s", open.Format("15:04"), closeAt.Format("15:04")),
		}, nil
	}
	if earliest := now.Add(c.opts.Buffer); day.Equal(today) && !start.After(earliest) {
		return &Violation{
			Kind:    KindTooSoon,
			Message: fmt.Sprintf("Нельзя записаться на время ранее %s (нужно время для подготовки)", earliest.Format("15:04")),
		}, nil
	}
	if end.After(closeAt) {
		return &Violation{
			Kind:    KindOverrunsClosing,
			Message: fmt.Sprintf("Процедура не завершится в рабочее время (до %s)", closeAt.Format("15:04")),
		}, nil
	}

	if c.busy == nil {
		return nil, nil
	}
	dayEnd := day.AddDate(0, 0, 1)
	if req.SpecialistID != "" {
		busy, err := c.busy.ListBusy(ctx, BusyQuery{SpecialistID: req.SpecialistID, From: day, To: dayEnd})
		if err != nil {
			return nil, fmt.Errorf("validation: list specialist bookings: %w", err)
		}
		if overlapsAny(busy, start, end) {
			return &Violation{Kind: KindSpecialistBusy, Message: "Это время уже занято. Выберите другое время"}, nil
		}
	}
	if req.PatientPhone != "" {
		busy, err := c.busy.ListBusy(ctx, BusyQuery{PatientPhone: req.PatientPhone, From: day, To: dayEnd})
		if err != nil {
			return nil, fmt.Errorf("validation: list patient bookings: %w", err)
		}
		if overlapsAny(busy, start, end) {
			return &Violation{Kind: KindPatientBusy, Message: "У вас уже есть запись на это время. Выберите другое время"}, nil
		}
	}
	return nil, nil
}

func overlapsAny(busy []Interval, start, end time.Time) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
