// Package dialoglog records every chat exchange and derives daily secretary
// analytics from the log.
package dialoglog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Entry is one user message and the secretary's reply.
type Entry struct {
	ID              string            `json:"id"`
	SessionID       string            `json:"session_id"`
	UserMessage     string            `json:"user_message"`
	Reply           string            `json:"reply"`
	Intent          string            `json:"intent"`
	Service         string            `json:"service,omitempty"`
	Specialist      string            `json:"specialist,omitempty"`
	Entities        map[string]string `json:"entities,omitempty"`
	ExtractedFields []string          `json:"extracted_fields,omitempty"`
	Channel         string            `json:"channel"`
	CreatedAt       time.Time         `json:"created_at"`
}

// IntentCount is an intent with its number of occurrences.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}

// DailyStats summarizes one day of secretary traffic.
type DailyStats struct {
	Date                string        `json:"date"` // DD.MM.YYYY
	TotalDialogs        int           `json:"total_dialogs"`
	UniqueSessions      int           `json:"unique_sessions"`
	AppointmentsCreated int           `json:"appointments_created"`
	TopIntents          []IntentCount `json:"top_intents"`
	ConversionRate      float64       `json:"conversion_rate"`
}

// ServiceCount is a service with its number of chat bookings.
type ServiceCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

// HourCount is an hour of day with its number of messages.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// SuccessRate is the share of exchanges that ended in a booking.
type SuccessRate struct {
	TotalDialogs      int     `json:"total_dialogs"`
	SuccessfulDialogs int     `json:"successful_dialogs"`
	SuccessRate       float64 `json:"success_rate"`
}

const topIntentLimit = 5

// Store persists dialog entries to PostgreSQL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a dialog log store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db, now: time.Now}
}

// Record appends an entry. A nil store discards it.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.Channel == "" {
		e.Channel = "web"
	}
	if e.Intent == "" {
		e.Intent = "unknown"
	}
	entities, err := json.Marshal(e.Entities)
	if err != nil {
		return fmt.Errorf("dialoglog: marshal entities: %w", err)
	}
	extracted := e.ExtractedFields
	if extracted == nil {
		extracted = []string{}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dialog_log (id, session_id, user_message, reply, intent, service, specialist, entities, extracted_fields, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.SessionID, e.UserMessage, e.Reply, e.Intent, e.Service, e.Specialist, entities, pq.Array(extracted), e.Channel, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("dialoglog: insert entry: %w", err)
	}
	return nil
}

// ListSession returns a session's entries oldest first.
func (s *Store) ListSession(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_message, reply, intent, service, specialist, entities, extracted_fields, channel, created_at
		FROM dialog_log
		WHERE session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("dialoglog: list session: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var entities []byte
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserMessage, &e.Reply, &e.Intent, &e.Service, &e.Specialist,
			&entities, pq.Array(&e.ExtractedFields), &e.Channel, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("dialoglog: scan entry: %w", err)
		}
		if len(entities) > 0 {
			if err := json.Unmarshal(entities, &e.Entities); err != nil {
				return nil, fmt.Errorf("dialoglog: decode entities: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DailyStats computes traffic and conversion for the calendar day of day in
// its location.
func (s *Store) DailyStats(ctx context.Context, day time.Time) (*DailyStats, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	stats := &DailyStats{Date: from.Format("02.01.2006"), TopIntents: []IntentCount{}}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT session_id)
		FROM dialog_log
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&stats.TotalDialogs, &stats.UniqueSessions); err != nil {
		return nil, fmt.Errorf("dialoglog: count dialogs: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE channel = 'chat' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&stats.AppointmentsCreated); err != nil {
		return nil, fmt.Errorf("dialoglog: count appointments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT intent, COUNT(*) AS n
		FROM dialog_log
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY intent
		ORDER BY n DESC, intent
		LIMIT $3
	`, from, to, topIntentLimit)
	if err != nil {
		return nil, fmt.Errorf("dialoglog: top intents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ic IntentCount
		if err := rows.Scan(&ic.Intent, &ic.Count); err != nil {
			return nil, fmt.Errorf("dialoglog: scan intent: %w", err)
		}
		stats.TopIntents = append(stats.TopIntents, ic)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.ConversionRate = percent(stats.AppointmentsCreated, stats.TotalDialogs)
	return stats, nil
}

// PopularServices ranks services by appointments created since the cutoff.
func (s *Store) PopularServices(ctx context.Context, since time.Time, limit int) ([]ServiceCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, COUNT(*) AS n
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.created_at >= $1
		GROUP BY s.name
		ORDER BY n DESC, s.name
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("dialoglog: popular services: %w", err)
	}
	defer rows.Close()

	out := []ServiceCount{}
	for rows.Next() {
		var sc ServiceCount
		if err := rows.Scan(&sc.Service, &sc.Count); err != nil {
			return nil, fmt.Errorf("dialoglog: scan service: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// PeakHours ranks hours of day by message volume since the cutoff.
func (s *Store) PeakHours(ctx context.Context, since time.Time, limit int) ([]HourCount, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(*) AS n
		FROM dialog_log
		WHERE created_at >= $1
		GROUP BY hour
		ORDER BY n DESC, hour
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("dialoglog: peak hours: %w", err)
	}
	defer rows.Close()

	out := []HourCount{}
	for rows.Next() {
		var hc HourCount
		if err := rows.Scan(&hc.Hour, &hc.Count); err != nil {
			return nil, fmt.Errorf("dialoglog: scan hour: %w", err)
		}
		out = append(out, hc)
	}
	return out, rows.Err()
}

// SuccessRate reports how many exchanges since the cutoff completed a booking.
func (s *Store) SuccessRate(ctx context.Context, since time.Time) (*SuccessRate, error) {
	var out SuccessRate
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE intent = 'booking_completed')
		FROM dialog_log
		WHERE created_at >= $1
	`, since).Scan(&out.TotalDialogs, &out.SuccessfulDialogs); err != nil {
		return nil, fmt.Errorf("dialoglog: success rate: %w", err)
	}
	out.SuccessRate = percent(out.SuccessfulDialogs, out.TotalDialogs)
	return &out, nil
}

func percent(part, total int) float64 {
	if total < 1 {
		total = 1
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
