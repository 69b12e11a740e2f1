package catalog

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestPostgresRepositoryListServices(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "description", "price", "currency", "duration_minutes", "category", "active", "keywords", "specialists"}).
		AddRow("massage-children", "Детский массаж", "", 150.0, "ILS", 45, CategoryMassage, true, []string{"детский массаж"}, []string{"Авраам"})
	mock.ExpectQuery("SELECT s.id").WillReturnRows(rows)

	services, err := repo.ListServices(context.Background())
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) != 1 || services[0].DurationMinutes != 45 || services[0].Specialists[0] != "Авраам" {
		t.Fatalf("unexpected services: %#v", services)
	}

	spRows := pgxmock.NewRows([]string{"id", "name", "dative", "specialty", "active"}).
		AddRow("avraam", "Авраам", "Аврааму", "Массажист", true)
	mock.ExpectQuery("SELECT id, name, dative").WillReturnRows(spRows)

	specialists, err := repo.ListSpecialists(context.Background())
	if err != nil {
		t.Fatalf("list specialists: %v", err)
	}
	if len(specialists) != 1 || specialists[0].DativeName() != "Аврааму" {
		t.Fatalf("unexpected specialists: %#v", specialists)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
