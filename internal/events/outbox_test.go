package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newOutboxStoreWithExec(mock)

	mock.ExpectExec("INSERT INTO outbox").WithArgs(pgxmock.AnyArg(), TypeAppointmentCreated, pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := store.Publish(context.Background(), AppointmentCreatedV1{AppointmentID: "appt-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "type", "payload", "created_at"}).AddRow(id, TypeAppointmentCreated, []byte(`{"appointment_id":"appt-1"}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10)).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !ok {
		t.Fatal("expected mark delivered to report success")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type memoryOutbox struct {
	pending   []OutboxEntry
	delivered map[uuid.UUID]bool
}

func (m *memoryOutbox) FetchPending(context.Context, int32) ([]OutboxEntry, error) {
	var out []OutboxEntry
	for _, e := range m.pending {
		if !m.delivered[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryOutbox) MarkDelivered(_ context.Context, id uuid.UUID) (bool, error) {
	if m.delivered[id] {
		return false, nil
	}
	m.delivered[id] = true
	return true, nil
}

type flakyHandler struct {
	failFor uuid.UUID
	seen    []uuid.UUID
}

func (h *flakyHandler) Handle(_ context.Context, entry OutboxEntry) error {
	h.seen = append(h.seen, entry.ID)
	if entry.ID == h.failFor {
		return errors.New("smtp down")
	}
	return nil
}

func TestDelivererDrainKeepsFailedEntriesPending(t *testing.T) {
	ok, bad := uuid.New(), uuid.New()
	store := &memoryOutbox{
		pending:   []OutboxEntry{{ID: ok, Type: TypeAppointmentCreated}, {ID: bad, Type: TypeAppointmentCancelled}},
		delivered: map[uuid.UUID]bool{},
	}
	handler := &flakyHandler{failFor: bad}
	d := newDeliverer(store, handler, nil)

	if got := d.Drain(context.Background()); got != 1 {
		t.Fatalf("expected 1 delivered, got %d", got)
	}
	if store.delivered[bad] {
		t.Fatal("failed entry must stay pending")
	}

	handler.failFor = uuid.Nil
	if got := d.Drain(context.Background()); got != 1 {
		t.Fatalf("expected retry to deliver 1, got %d", got)
	}
	if len(handler.seen) != 3 {
		t.Fatalf("expected 3 handler calls, got %d", len(handler.seen))
	}
}
