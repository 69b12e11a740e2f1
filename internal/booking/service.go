package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-secretary/internal/events"
	"github.com/wolfman30/clinic-secretary/internal/validation"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// EventPublisher writes domain events; *events.OutboxStore implements it.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.CanonicalEvent) error
}

// ReminderScheduler plans and cancels reminders for an appointment.
type ReminderScheduler interface {
	ScheduleFor(ctx context.Context, appt *Appointment, patient *Patient) error
	CancelFor(ctx context.Context, appointmentID string) error
}

// Observer receives booking outcomes for metrics.
type Observer interface {
	ObserveBooking(outcome string)
	ObserveValidationFailure(kind string)
}

// Booking outcomes reported to the Observer.
const (
	OutcomeBooked   = "booked"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Outcome is the result of Book. Appointment is nil when Result is invalid.
type Outcome struct {
	Appointment *Appointment
	Result      *validation.Result
}

// Options configures a Service.
type Options struct {
	DefaultCity string
	Publisher   EventPublisher
	Reminders   ReminderScheduler
	Observer    Observer
	Logger      *logging.Logger
	Now         func() time.Time
}

// Service books, confirms and cancels appointments.
type Service struct {
	repo        Repository
	validator   *validation.Validator
	publisher   EventPublisher
	reminders   ReminderScheduler
	observer    Observer
	defaultCity string
	logger      *logging.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService wires the booking service.
func NewService(repo Repository, validator *validation.Validator, opts Options) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if validator == nil {
		panic("booking: validator required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCity == "" {
		opts.DefaultCity = "Иерусалим"
	}
	return &Service{
		repo:        repo,
		validator:   validator,
		publisher:   opts.Publisher,
		reminders:   opts.Reminders,
		observer:    opts.Observer,
		defaultCity: opts.DefaultCity,
		logger:      opts.Logger,
		tracer:      otel.Tracer("clinic-secretary.internal.booking"),
		now:         opts.Now,
	}
}

// Validator exposes the rules engine used for bookings.
func (s *Service) Validator() *validation.Validator { return s.validator }

// Book validates req and, when every rule passes, stores the patient and the
// appointment. Rule failures are reported in Outcome.Result, not as errors.
func (s *Service) Book(ctx context.Context, req Request) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "booking.book", trace.WithAttributes(
		attribute.String("channel", string(req.Channel)),
	))
	defer span.End()

	res, err := s.validator.ValidateAppointment(ctx, validation.Input{
		Name:       req.Name,
		Phone:      req.Phone,
		Service:    req.Service,
		Specialist: req.Specialist,
		Date:       req.Date,
		Time:       req.Time,
	})
	if err != nil {
		span.RecordError(err)
		s.observe(OutcomeError)
		return nil, fmt.Errorf("booking: validate: %w", err)
	}
	if !res.Valid {
		s.observe(OutcomeRejected)
		s.observeFailure(res)
		s.logger.Info("booking rejected", "errors", res.Errors, "session_id", req.SessionID)
		return &Outcome{Result: res}, nil
	}

	data := res.Data
	patient, err := s.repo.EnsurePatient(ctx, Patient{
		Name:    data.Name,
		Phone:   data.Phone.E164,
		Email:   strings.TrimSpace(req.Email),
		Country: countryName(data.Phone.Country),
		City:    s.defaultCity,
	})
	if err != nil {
		span.RecordError(err)
		s.observe(OutcomeError)
		return nil, fmt.Errorf("booking: ensure patient: %w", err)
	}

	channel := req.Channel
	if channel == "" {
		channel = ChannelWeb
	}
	appt := &Appointment{
		PatientID:      patient.ID,
		SpecialistID:   data.Specialist.ID,
		ServiceID:      data.Service.ID,
		Start:          data.Start,
		End:            data.Start.Add(data.Service.Duration()),
		Status:         StatusPending,
		Channel:        channel,
		Notes:          bookingNotes(channel, req.SessionID),
		PatientName:    patient.Name,
		PatientPhone:   patient.Phone,
		PatientEmail:   patient.Email,
		ServiceName:    data.Service.Name,
		SpecialistName: data.Specialist.Name,
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.observe(OutcomeConflict)
			return &Outcome{Result: s.slotTakenResult(ctx, res)}, nil
		}
		span.RecordError(err)
		s.observe(OutcomeError)
		return nil, fmt.Errorf("booking: create appointment: %w", err)
	}
	appt.PatientName, appt.PatientPhone, appt.PatientEmail = patient.Name, patient.Phone, patient.Email
	appt.ServiceName, appt.SpecialistName = data.Service.Name, data.Specialist.Name
	span.SetAttributes(attribute.String("appointment_id", appt.ID))

	s.invalidate(ctx, appt)
	s.publish(ctx, events.AppointmentCreatedV1{
		AppointmentID:  appt.ID,
		PatientID:      patient.ID,
		PatientName:    patient.Name,
		PatientPhone:   patient.Phone,
		PatientEmail:   patient.Email,
		ServiceName:    data.Service.Name,
		SpecialistName: data.Specialist.Name,
		Price:          data.Service.Price,
		Start:          appt.Start,
		End:            appt.End,
		Channel:        string(appt.Channel),
		SessionID:      req.SessionID,
		CreatedAt:      appt.CreatedAt,
	})
	if s.reminders != nil {
		if err := s.reminders.ScheduleFor(ctx, appt, patient); err != nil {
			s.logger.Error("failed to schedule reminders", "error", err, "appointment_id", appt.ID)
		}
	}

	s.observe(OutcomeBooked)
	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"specialist", data.Specialist.Name,
		"start", appt.Start.Format(time.RFC3339),
		"session_id", req.SessionID,
	)
	return &Outcome{Appointment: appt, Result: res}, nil
}

// slotTakenResult turns a lost race into the same shape as a busy-slot rule
// failure, with fresh suggestions.
func (s *Service) slotTakenResult(ctx context.Context, res *validation.Result) *validation.Result {
	data := res.Data
	if slots := s.validator.Slots(); slots != nil {
		if err := slots.Invalidate(ctx, data.Specialist.ID, data.Start); err != nil {
			s.logger.Warn("failed to invalidate slot cache", "error", err)
		}
	}
	out := &validation.Result{
		Data:      data,
		Warnings:  res.Warnings,
		Violation: &validation.Violation{Kind: validation.KindSpecialistBusy, Message: "Это время уже занято. Выберите другое время"},
		Fields:    []string{validation.FieldTime},
	}
	out.Errors = []string{"Время: " + out.Violation.Message}
	if slots := s.validator.Slots(); slots != nil {
		free, err := slots.FreeSlots(ctx, data.Specialist.ID, data.Date, data.Service.Duration())
		if err == nil {
			out.Suggestions = validation.SlotTimes(free, 5)
		}
	}
	return out
}

// ListForPhone returns upcoming active appointments for a phone in any
// accepted spelling.
func (s *Service) ListForPhone(ctx context.Context, rawPhone string) ([]*Appointment, error) {
	phone, err := validation.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPhone(ctx, phone.E164)
}

// Get returns an appointment by id.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Cancel moves an active appointment to cancelled and frees its slot.
func (s *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "booking.cancel", trace.WithAttributes(attribute.String("appointment_id", id)))
	defer span.End()

	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.Active() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, StatusCancelled)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.invalidate(ctx, updated)
	s.publish(ctx, events.AppointmentCancelledV1{
		AppointmentID:  updated.ID,
		PatientName:    updated.PatientName,
		PatientPhone:   updated.PatientPhone,
		PatientEmail:   updated.PatientEmail,
		ServiceName:    updated.ServiceName,
		SpecialistName: updated.SpecialistName,
		Start:          updated.Start,
		CancelledAt:    s.now(),
	})
	if s.reminders != nil {
		if err := s.reminders.CancelFor(ctx, id); err != nil {
			s.logger.Error("failed to cancel reminders", "error", err, "appointment_id", id)
		}
	}
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return updated, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id string) (*Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, StatusConfirmed)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, StatusConfirmed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment confirmed", "appointment_id", id)
	return updated, nil
}

func (s *Service) invalidate(ctx context.Context, appt *Appointment) {
	slots := s.validator.Slots()
	if slots == nil {
		return
	}
	if err := slots.Invalidate(ctx, appt.SpecialistID, appt.Start); err != nil {
		s.logger.Warn("failed to invalidate slot cache", "error", err, "appointment_id", appt.ID)
	}
}

func (s *Service) publish(ctx context.Context, evt events.CanonicalEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish event", "error", err, "type", evt.EventType())
	}
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveBooking(outcome)
	}
}

func (s *Service) observeFailure(res *validation.Result) {
	if s.observer == nil {
		return
	}
	if res.Violation != nil {
		s.observer.ObserveValidationFailure(string(res.Violation.Kind))
		return
	}
	for _, f := range res.Fields {
		s.observer.ObserveValidationFailure(f)
	}
}

func bookingNotes(channel Channel, sessionID string) string {
	if channel == ChannelChat && sessionID != "" {
		return fmt.Sprintf("Запись через ИИ-чат (сессия: %s)", sessionID)
	}
	if channel == ChannelChat {
		return "Запись через ИИ-чат"
	}
	return ""
}
