package validation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-secretary/internal/catalog"
)

func newTestValidator(t *testing.T, busy BusyLister) *Validator {
	t.Helper()
	loc := clinicLoc(t)
	opts := Options{Now: fixedNow(loc)}
	cfg := StaticConfig(nil)
	return NewValidator(catalog.Default(), NewChecker(cfg, busy, opts), NewSlotFinder(cfg, busy, opts))
}

func validInput() Input {
	return Input{
		Name:       "Анна",
		Phone:      "0501234567",
		Service:    "Детский массаж",
		Specialist: "Авраам",
		Date:       "2025-12-09",
		Time:       "11:00",
	}
}

func TestValidateAppointmentSuccess(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	res, err := v.ValidateAppointment(context.Background(), validInput())
	require.NoError(t, err)
	require.True(t, res.Valid, res.Errors)
	assert.Equal(t, "+972501234567", res.Data.Phone.E164)
	assert.Equal(t, "massage-children", res.Data.Service.ID)
	assert.Equal(t, "avraam", res.Data.Specialist.ID)
	assert.Equal(t, 11, res.Data.Start.Hour())
	assert.Equal(t, "✅ Все данные корректны!", Summary(res))
}

func TestValidateAppointmentPartialMatchWarns(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	in := validInput()
	in.Service = "нутрициолога"
	in.Specialist = "Римм"
	res, err := v.ValidateAppointment(context.Background(), in)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Errors)
	assert.Len(t, res.Warnings, 2)
	assert.Contains(t, Summary(res), "⚠️ Предупреждения: Услуга: Найдена услуга: Консультация нутрициолога")
}

func TestValidateAppointmentIdentityErrors(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	in := validInput()
	in.Name = "на массаж"
	in.Phone = "123"
	in.Service = "йога"
	res, err := v.ValidateAppointment(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{FieldName, FieldPhone, FieldService}, res.Fields)
	assert.Nil(t, res.Violation, "date rules run only after identity fields pass")

	summary := Summary(res)
	assert.True(t, strings.HasPrefix(summary, "❌ Обнаружены ошибки:\n• Имя: "))
	assert.Contains(t, summary, "Услуга: Услуга 'йога' не найдена. Доступны: ")
}

func TestValidateAppointmentBusySuggestsSlots(t *testing.T) {
	loc := clinicLoc(t)
	day := time.Date(2025, 12, 9, 0, 0, 0, 0, loc)
	busy := &fakeBusy{bySpecialist: map[string][]Interval{
		"avraam": {{Start: day.Add(11 * time.Hour), End: day.Add(11*time.Hour + 45*time.Minute)}},
	}}
	v := newTestValidator(t, busy)

	res, err := v.ValidateAppointment(context.Background(), validInput())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotNil(t, res.Violation)
	assert.Equal(t, KindSpecialistBusy, res.Violation.Kind)
	assert.True(t, res.HasField(FieldTime))
	assert.Equal(t, []string{"10:00", "12:00", "12:30", "13:00", "13:30"}, res.Suggestions)
	assert.Contains(t, Summary(res), "💡 Рекомендуемые времена: 10:00, 12:00")
}

func TestValidateAppointmentClosedDayFlagsDate(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	in := validInput()
	in.Date = "12.12"
	res, err := v.ValidateAppointment(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, res.Violation)
	assert.Equal(t, KindClosedDay, res.Violation.Kind)
	assert.True(t, res.HasField(FieldDate))
	assert.Empty(t, res.Suggestions)
}

func TestValidateAppointmentBadTime(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	in := validInput()
	in.Time = "обед"
	res, err := v.ValidateAppointment(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.HasField(FieldTime))
	assert.Contains(t, res.Errors[0], "Неверный формат времени")
}

func TestSuggestDatesSkipsClosedDays(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	loc := clinicLoc(t)
	// Thursday: Friday and Saturday are closed.
	dates, err := v.SuggestDates(context.Background(), "avraam", time.Date(2025, 12, 11, 12, 0, 0, 0, loc), 55*time.Minute, 3)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2025-12-14", dates[0].Format(time.DateOnly))
	assert.Equal(t, "2025-12-15", dates[1].Format(time.DateOnly))
	assert.Equal(t, "2025-12-16", dates[2].Format(time.DateOnly))
}

func TestResolveDateUsesClinicClock(t *testing.T) {
	v := newTestValidator(t, &fakeBusy{})
	day, err := v.ResolveDate(context.Background(), "завтра")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-09", day.Format(time.DateOnly))
	assert.Equal(t, "Asia/Jerusalem", day.Location().String())

	_, err = v.ResolveDate(context.Background(), "когда-нибудь")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNowIsClinicLocal(t *testing.T) {
	opts := Options{Now: func() time.Time { return time.Date(2025, 12, 8, 23, 30, 0, 0, time.UTC) }}
	cfg := StaticConfig(nil)
	v := NewValidator(catalog.Default(), NewChecker(cfg, &fakeBusy{}, opts), NewSlotFinder(cfg, &fakeBusy{}, opts))

	now, err := v.Now(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jerusalem", now.Location().String())
	assert.Equal(t, 9, now.Day())
	assert.Equal(t, 1, now.Hour())
}
