package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const reminderColumns = `id, appointment_id, kind, scheduled_at, status, patient_name, patient_email,
	service_name, specialist_name, appointment_start, sent_at, error, created_at, updated_at`

// Store provides CRUD operations for the reminders table.
type Store struct {
	db  DB
	now func() time.Time
}

// NewStore creates a new reminder store.
func NewStore(db DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a reminder. Re-creating the same (appointment, kind) is a
// no-op.
func (s *Store) Create(ctx context.Context, r *Reminder) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = StatusScheduled
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO reminders (id, appointment_id, kind, scheduled_at, status, patient_name, patient_email,
			service_name, specialist_name, appointment_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (appointment_id, kind) DO NOTHING`,
		r.ID, r.AppointmentID, string(r.Kind), r.ScheduledAt, string(r.Status), r.PatientName, r.PatientEmail,
		r.ServiceName, r.SpecialistName, r.AppointmentStart, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("reminders: create: %w", err)
	}
	return nil
}

// ListDue returns scheduled reminders whose time has come, oldest first.
func (s *Store) ListDue(ctx context.Context, asOf time.Time, limit int) ([]Reminder, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE status = 'scheduled' AND scheduled_at <= $1
		ORDER BY scheduled_at ASC LIMIT $2`, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("reminders: list due: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// List returns reminders, optionally filtered by status, soonest first.
func (s *Store) List(ctx context.Context, status *Status, limit int) ([]Reminder, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = s.db.Query(ctx, `
			SELECT `+reminderColumns+`
			FROM reminders
			WHERE status = $1
			ORDER BY scheduled_at ASC LIMIT $2`, string(*status), limit)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT `+reminderColumns+`
			FROM reminders
			ORDER BY scheduled_at ASC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reminders: list: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent transitions a reminder from scheduled to sent.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := s.now()
	tag, err := s.db.Exec(ctx, `
		UPDATE reminders SET status = 'sent', sent_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'scheduled'`, now, id)
	if err != nil {
		return fmt.Errorf("reminders: mark sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reminders: mark sent: no scheduled reminder with id %s", id)
	}
	return nil
}

// MarkFailed records a delivery error.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE reminders SET status = 'failed', error = $1, updated_at = $2
		WHERE id = $3 AND status = 'scheduled'`, reason, s.now(), id)
	if err != nil {
		return fmt.Errorf("reminders: mark failed: %w", err)
	}
	return nil
}

// Cancel cancels one scheduled reminder.
func (s *Store) Cancel(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE reminders SET status = 'cancelled', updated_at = $1
		WHERE id = $2 AND status = 'scheduled'`, s.now(), id)
	if err != nil {
		return fmt.Errorf("reminders: cancel: %w", err)
	}
	return nil
}

// CancelForAppointment cancels every scheduled reminder of an appointment.
func (s *Store) CancelForAppointment(ctx context.Context, appointmentID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE reminders SET status = 'cancelled', updated_at = $1
		WHERE appointment_id = $2 AND status = 'scheduled'`, s.now(), appointmentID)
	if err != nil {
		return 0, fmt.Errorf("reminders: cancel for appointment: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats returns reminder counts per status.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	row := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM reminders`)

	var stats Stats
	if err := row.Scan(&stats.Scheduled, &stats.Sent, &stats.Failed, &stats.Cancelled); err != nil {
		return nil, fmt.Errorf("reminders: stats: %w", err)
	}
	return &stats, nil
}

func scanReminders(rows pgx.Rows) ([]Reminder, error) {
	var result []Reminder
	for rows.Next() {
		var (
			r            Reminder
			kind, status string
		)
		err := rows.Scan(
			&r.ID, &r.AppointmentID, &kind, &r.ScheduledAt, &status,
			&r.PatientName, &r.PatientEmail, &r.ServiceName, &r.SpecialistName,
			&r.AppointmentStart, &r.SentAt, &r.Error, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("reminders: scan reminder: %w", err)
		}
		r.Kind = Kind(kind)
		r.Status = Status(status)
		result = append(result, r)
	}
	return result, rows.Err()
}
