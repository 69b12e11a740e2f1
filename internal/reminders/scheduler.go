package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

type reminderStore interface {
	Create(ctx context.Context, r *Reminder) error
	CancelForAppointment(ctx context.Context, appointmentID string) (int64, error)
}

// Scheduler creates reminders for new appointments. It implements
// booking.ReminderScheduler.
type Scheduler struct {
	store  reminderStore
	now    func() time.Time
	logger *logging.Logger
}

// NewScheduler creates a reminder scheduler. now may be nil.
func NewScheduler(store *Store, now func() time.Time, logger *logging.Logger) *Scheduler {
	return newScheduler(store, now, logger)
}

func newScheduler(store reminderStore, now func() time.Time, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{store: store, now: now, logger: logger}
}

// ScheduleFor creates the 24h and 2h reminders that are still in the future.
// Patients without an email get none.
func (s *Scheduler) ScheduleFor(ctx context.Context, appt *booking.Appointment, patient *booking.Patient) error {
	if patient == nil || patient.Email == "" {
		s.logger.Debug("reminders: patient has no email, skipping", "appointment_id", appt.ID)
		return nil
	}
	now := s.now()
	for _, kind := range Kinds {
		at := appt.Start.Add(-kind.Offset())
		if !at.After(now) {
			continue
		}
		r := &Reminder{
			AppointmentID:    appt.ID,
			Kind:             kind,
			ScheduledAt:      at.UTC(),
			PatientName:      patient.Name,
			PatientEmail:     patient.Email,
			ServiceName:      appt.ServiceName,
			SpecialistName:   appt.SpecialistName,
			AppointmentStart: appt.Start.UTC(),
		}
		if err := s.store.Create(ctx, r); err != nil {
			return fmt.Errorf("reminders: schedule %s: %w", kind, err)
		}
		s.logger.Info("reminders: scheduled",
			"appointment_id", appt.ID,
			"kind", string(kind),
			"scheduled_at", r.ScheduledAt.Format(time.RFC3339),
		)
	}
	return nil
}

// CancelFor cancels the pending reminders of an appointment.
func (s *Scheduler) CancelFor(ctx context.Context, appointmentID string) error {
	n, err := s.store.CancelForAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("reminders: cancelled", "appointment_id", appointmentID, "count", n)
	}
	return nil
}

var _ booking.ReminderScheduler = (*Scheduler)(nil)
