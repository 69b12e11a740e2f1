package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads the catalog tables.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	if db == nil {
		panic("catalog: querier required")
	}
	return &PostgresRepository{db: db}
}

// ListServices returns active services with the names of their specialists.
func (r *PostgresRepository) ListServices(ctx context.Context) ([]Service, error) {
	query := `
		SELECT s.id, s.name, s.description, s.price, s.currency, s.duration_minutes,
		       s.category, s.active, s.keywords,
		       COALESCE(array_agg(sp.name ORDER BY sp.name) FILTER (WHERE sp.name IS NOT NULL), '{}')
		FROM services s
		LEFT JOIN service_specialists ss ON ss.service_id = s.id
		LEFT JOIN specialists sp ON sp.id = ss.specialist_id AND sp.active
		WHERE s.active
		GROUP BY s.id
		ORDER BY s.sort_order, s.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.Price,
			&s.Currency,
			&s.DurationMinutes,
			&s.Category,
			&s.Active,
			&s.Keywords,
			&s.Specialists,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate services: %w", err)
	}
	return services, nil
}

// ListSpecialists returns active specialists.
func (r *PostgresRepository) ListSpecialists(ctx context.Context) ([]Specialist, error) {
	query := `
		SELECT id, name, dative, specialty, active
		FROM specialists
		WHERE active
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list specialists: %w", err)
	}
	defer rows.Close()

	var specialists []Specialist
	for rows.Next() {
		var sp Specialist
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Dative, &sp.Specialty, &sp.Active); err != nil {
			return nil, fmt.Errorf("catalog: scan specialist: %w", err)
		}
		specialists = append(specialists, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate specialists: %w", err)
	}
	return specialists, nil
}
