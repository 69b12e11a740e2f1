package dialoglog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInsertsEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	at := time.Date(2025, 12, 8, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO dialog_log").
		WithArgs(sqlmock.AnyArg(), "s1", "Хочу на детский массаж", "Отлично! К Аврааму. Как вас зовут?", "collect_name",
			"Детский массаж", "Авраам", []byte(`{"service":"Детский массаж"}`), sqlmock.AnyArg(), "chat", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Record(context.Background(), Entry{
		SessionID:       "s1",
		UserMessage:     "Хочу на детский массаж",
		Reply:           "Отлично! К Аврааму. Как вас зовут?",
		Intent:          "collect_name",
		Service:         "Детский массаж",
		Specialist:      "Авраам",
		Entities:        map[string]string{"service": "Детский массаж"},
		ExtractedFields: []string{"service"},
		Channel:         "chat",
		CreatedAt:       at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOnNilStoreIsNoop(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Record(context.Background(), Entry{SessionID: "s1"}))
	assert.Nil(t, NewStore(nil))
}

func TestDailyStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	day := time.Date(2025, 12, 8, 15, 30, 0, 0, time.UTC)
	from := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COUNT\\(DISTINCT session_id\\)").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sessions"}).AddRow(30, 7))
	mock.ExpectQuery("FROM appointments").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("GROUP BY intent").
		WithArgs(from, to, topIntentLimit).
		WillReturnRows(sqlmock.NewRows([]string{"intent", "n"}).
			AddRow("collect_name", 9).
			AddRow("collect_phone", 8))

	stats, err := store.DailyStats(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, "08.12.2025", stats.Date)
	assert.Equal(t, 30, stats.TotalDialogs)
	assert.Equal(t, 7, stats.UniqueSessions)
	assert.Equal(t, 4, stats.AppointmentsCreated)
	assert.Equal(t, 13.33, stats.ConversionRate)
	assert.Equal(t, []IntentCount{{"collect_name", 9}, {"collect_phone", 8}}, stats.TopIntents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyStatsEmptyDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	mock.ExpectQuery("COUNT\\(DISTINCT session_id\\)").WillReturnRows(sqlmock.NewRows([]string{"count", "sessions"}).AddRow(0, 0))
	mock.ExpectQuery("FROM appointments").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("GROUP BY intent").WillReturnRows(sqlmock.NewRows([]string{"intent", "n"}))

	stats, err := store.DailyStats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.ConversionRate)
	assert.NotNil(t, stats.TopIntents)
}

func TestPopularServicesAndSuccessRate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	since := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("JOIN services").
		WithArgs(since, 10).
		WillReturnRows(sqlmock.NewRows([]string{"name", "n"}).
			AddRow("Детский массаж", 5).
			AddRow("Консультация остеопата", 2))
	services, err := store.PopularServices(context.Background(), since, 0)
	require.NoError(t, err)
	assert.Equal(t, []ServiceCount{{"Детский массаж", 5}, {"Консультация остеопата", 2}}, services)

	mock.ExpectQuery("FILTER").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"total", "ok"}).AddRow(8, 2))
	rate, err := store.SuccessRate(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 25.0, rate.SuccessRate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSessionDecodesEntities(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	at := time.Date(2025, 12, 8, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE session_id").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "user_message", "reply", "intent", "service", "specialist", "entities", "extracted_fields", "channel", "created_at"}).
			AddRow("e1", "s1", "Анна", "Спасибо, Анна!", "collect_phone", "", "", []byte(`{"name":"Анна"}`), "{name}", "chat", at))

	entries, err := store.ListSession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Анна", entries[0].Entities["name"])
	assert.Equal(t, []string{"name"}, entries[0].ExtractedFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerDailyRejectsBadDate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewHandler(NewStore(db), time.UTC, nil)
	rec := httptest.NewRecorder()
	h.Daily(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/daily?date=08.12.2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Services(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/services?days=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDaily(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("COUNT\\(DISTINCT session_id\\)").WillReturnRows(sqlmock.NewRows([]string{"count", "sessions"}).AddRow(2, 1))
	mock.ExpectQuery("FROM appointments").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("GROUP BY intent").WillReturnRows(sqlmock.NewRows([]string{"intent", "n"}).AddRow("booking_completed", 1))

	h := NewHandler(NewStore(db), time.UTC, nil)
	rec := httptest.NewRecorder()
	h.Daily(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/daily?date=2025-12-08", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conversion_rate":50`)
	assert.Contains(t, rec.Body.String(), `"date":"08.12.2025"`)
}

func TestHandlerSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 12, 8, 10, 0, 0, 0, time.UTC)
	columns := []string{"id", "session_id", "user_message", "reply", "intent", "service", "specialist", "entities", "extracted_fields", "channel", "created_at"}
	mock.ExpectQuery("WHERE session_id").WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("e1", "s1", "Анна", "Спасибо, Анна!", "collect_phone", "", "", []byte(`{"name":"Анна"}`), "{name}", "chat", at))
	mock.ExpectQuery("WHERE session_id").WithArgs("nope").WillReturnRows(sqlmock.NewRows(columns))

	r := chi.NewRouter()
	r.Get("/api/analytics/sessions/{id}", NewHandler(NewStore(db), time.UTC, nil).Session)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/sessions/s1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"s1"`)
	assert.Contains(t, rec.Body.String(), `"intent":"collect_phone"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/sessions/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
