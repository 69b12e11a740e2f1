package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/internal/notify"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

const dueBatchSize = 100

// Sender delivers a reminder; *notify.Notifier implements it.
type Sender interface {
	AppointmentReminder(ctx context.Context, r notify.Reminder) error
}

// Appointments looks up the current appointment state.
type Appointments interface {
	Get(ctx context.Context, id string) (*booking.Appointment, error)
}

// Observer counts reminder outcomes.
type Observer interface {
	ObserveReminder(status string)
}

type dueStore interface {
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Worker sends due reminders.
type Worker struct {
	store        dueStore
	appointments Appointments
	sender       Sender
	observer     Observer
	now          func() time.Time
	logger       *logging.Logger
}

// WorkerOption customizes a Worker.
type WorkerOption func(*Worker)

// WithObserver records outcomes.
func WithObserver(o Observer) WorkerOption {
	return func(w *Worker) { w.observer = o }
}

// WithClock overrides the worker clock.
func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) { w.now = now }
}

// NewWorker creates a reminder worker.
func NewWorker(store *Store, appointments Appointments, sender Sender, logger *logging.Logger, opts ...WorkerOption) *Worker {
	return newWorker(store, appointments, sender, logger, opts...)
}

func newWorker(store dueStore, appointments Appointments, sender Sender, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	w := &Worker{store: store, appointments: appointments, sender: sender, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run calls ProcessDue every interval until ctx is done.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessDue(ctx); err != nil {
			w.logger.Error("reminders worker: process due", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue sends every due reminder and returns how many were sent.
// Reminders of appointments that are no longer pending or confirmed are
// cancelled instead.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	reminders, err := w.store.ListDue(ctx, w.now().UTC(), dueBatchSize)
	if err != nil {
		return 0, fmt.Errorf("reminders worker: list due: %w", err)
	}
	if len(reminders) == 0 {
		return 0, nil
	}

	w.logger.Info("reminders worker: processing due reminders", "count", len(reminders))

	sent := 0
	for i := range reminders {
		r := &reminders[i]
		status, err := w.processOne(ctx, r)
		w.observe(status)
		if err != nil {
			w.logger.Error("reminders worker: failed to process reminder", "id", r.ID, "appointment_id", r.AppointmentID, "error", err)
			continue
		}
		if status == string(StatusSent) {
			sent++
		}
	}
	return sent, nil
}

func (w *Worker) processOne(ctx context.Context, r *Reminder) (string, error) {
	appt, err := w.appointments.Get(ctx, r.AppointmentID)
	if err != nil && !errors.Is(err, booking.ErrAppointmentNotFound) {
		return "error", fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil || !appt.Status.Active() {
		if err := w.store.Cancel(ctx, r.ID); err != nil {
			return "error", err
		}
		return string(StatusCancelled), nil
	}

	sendErr := w.sender.AppointmentReminder(ctx, notify.Reminder{
		AppointmentID:  r.AppointmentID,
		PatientName:    r.PatientName,
		PatientEmail:   r.PatientEmail,
		ServiceName:    r.ServiceName,
		SpecialistName: r.SpecialistName,
		Start:          appt.Start,
		Before:         r.Kind.Offset(),
	})
	if sendErr != nil {
		if err := w.store.MarkFailed(ctx, r.ID, sendErr.Error()); err != nil {
			return "error", err
		}
		return string(StatusFailed), fmt.Errorf("send: %w", sendErr)
	}
	if err := w.store.MarkSent(ctx, r.ID); err != nil {
		return "error", fmt.Errorf("mark sent: %w", err)
	}
	w.logger.Info("reminders worker: reminder sent", "id", r.ID, "appointment_id", r.AppointmentID, "kind", string(r.Kind))
	return string(StatusSent), nil
}

func (w *Worker) observe(status string) {
	if w.observer != nil {
		w.observer.ObserveReminder(status)
	}
}
