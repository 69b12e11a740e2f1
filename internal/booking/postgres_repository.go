package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-secretary/internal/validation"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores patients and appointments in Postgres.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(d db) *PostgresRepository {
	if d == nil {
		panic("booking: db required")
	}
	return &PostgresRepository{db: d}
}

const appointmentColumns = `
	a.id, a.patient_id, a.specialist_id, a.service_id, a.start_time, a.end_time,
	a.status, a.channel, a.notes, a.created_at,
	p.name, p.phone, p.email, s.name, sp.name`

const appointmentJoins = `
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN services s ON s.id = a.service_id
	JOIN specialists sp ON sp.id = a.specialist_id`

// EnsurePatient upserts by phone. An existing name is kept; a missing email
// is filled in.
func (r *PostgresRepository) EnsurePatient(ctx context.Context, p Patient) (*Patient, error) {
	query := `
		INSERT INTO patients (id, name, phone, email, country, city, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (phone) DO UPDATE
		SET email = COALESCE(NULLIF(patients.email, ''), EXCLUDED.email)
		RETURNING id, name, phone, email, country, city, notes, created_at
	`
	var out Patient
	if err := r.db.QueryRow(ctx, query,
		uuid.New(),
		p.Name,
		p.Phone,
		p.Email,
		p.Country,
		p.City,
		p.Notes,
	).Scan(&out.ID, &out.Name, &out.Phone, &out.Email, &out.Country, &out.City, &out.Notes, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("booking: upsert patient: %w", err)
	}
	return &out, nil
}

// CreateAppointment inserts appt inside a transaction that serializes
// bookings per specialist and re-checks for overlaps.
func (r *PostgresRepository) CreateAppointment(ctx context.Context, appt *Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, appt.SpecialistID); err != nil {
		return fmt.Errorf("booking: lock specialist: %w", err)
	}

	var taken bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE specialist_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_time < $3
			  AND end_time > $2
		)
	`, appt.SpecialistID, appt.Start, appt.End).Scan(&taken); err != nil {
		return fmt.Errorf("booking: check overlap: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}

	if appt.Status == "" {
		appt.Status = StatusPending
	}
	id := uuid.New()
	if err := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, specialist_id, service_id, start_time, end_time, status, channel, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`,
		id,
		appt.PatientID,
		appt.SpecialistID,
		appt.ServiceID,
		appt.Start,
		appt.End,
		string(appt.Status),
		string(appt.Channel),
		appt.Notes,
	).Scan(&appt.CreatedAt); err != nil {
		return fmt.Errorf("booking: insert appointment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("booking: commit: %w", err)
	}
	appt.ID = id.String()
	return nil
}

// ListBusy returns active intervals overlapping the window for a specialist
// or a patient phone.
func (r *PostgresRepository) ListBusy(ctx context.Context, q validation.BusyQuery) ([]validation.Interval, error) {
	query := `
		SELECT a.start_time, a.end_time
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.status IN ('pending', 'confirmed')
		  AND a.start_time < $2
		  AND a.end_time > $1
	`
	args := []any{q.From, q.To}
	if q.SpecialistID != "" {
		args = append(args, q.SpecialistID)
		query += fmt.Sprintf(" AND a.specialist_id = $%d", len(args))
	}
	if q.PatientPhone != "" {
		args = append(args, q.PatientPhone)
		query += fmt.Sprintf(" AND p.phone = $%d", len(args))
	}
	query += " ORDER BY a.start_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: list busy: %w", err)
	}
	defer rows.Close()

	var out []validation.Interval
	for rows.Next() {
		var iv validation.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("booking: scan busy: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// ListByPhone returns the patient's pending and confirmed appointments.
func (r *PostgresRepository) ListByPhone(ctx context.Context, phone string) ([]*Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `
		WHERE p.phone = $1 AND a.status IN ('pending', 'confirmed')
		ORDER BY a.start_time
	`
	rows, err := r.db.Query(ctx, query, phone)
	if err != nil {
		return nil, fmt.Errorf("booking: list by phone: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// Get fetches one appointment.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `
		WHERE a.id = $1
	`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return appt, err
}

// UpdateStatus sets the status and returns the updated appointment.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	ct, err := r.db.Exec(ctx, `UPDATE appointments SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, fmt.Errorf("booking: update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrAppointmentNotFound
	}
	return r.Get(ctx, id)
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status, channel string
	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.SpecialistID,
		&a.ServiceID,
		&a.Start,
		&a.End,
		&status,
		&channel,
		&a.Notes,
		&a.CreatedAt,
		&a.PatientName,
		&a.PatientPhone,
		&a.PatientEmail,
		&a.ServiceName,
		&a.SpecialistName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("booking: scan appointment: %w", err)
	}
	a.Status = Status(status)
	a.Channel = Channel(channel)
	return &a, nil
}
