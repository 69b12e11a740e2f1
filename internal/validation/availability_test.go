package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-secretary/internal/clinic"
)

type fakeBusy struct {
	bySpecialist map[string][]Interval
	byPhone      map[string][]Interval
	calls        int
}

func (f *fakeBusy) ListBusy(_ context.Context, q BusyQuery) ([]Interval, error) {
	f.calls++
	var src []Interval
	if q.SpecialistID != "" {
		src = f.bySpecialist[q.SpecialistID]
	} else {
		src = f.byPhone[q.PatientPhone]
	}
	var out []Interval
	for _, iv := range src {
		if iv.Overlaps(q.From, q.To) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func clinicLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	return loc
}

// Monday 2025-12-08 09:00 in Jerusalem.
func fixedNow(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Date(2025, 12, 8, 9, 0, 0, 0, loc) }
}

func TestCheckerRules(t *testing.T) {
	loc := clinicLoc(t)
	at := func(m time.Month, d, h, min int) time.Time { return time.Date(2025, m, d, h, min, 0, 0, loc) }

	busy := &fakeBusy{
		bySpecialist: map[string][]Interval{
			"avraam": {{Start: at(12, 9, 12, 0), End: at(12, 9, 12, 55)}},
		},
		byPhone: map[string][]Interval{
			"+972501234567": {{Start: at(12, 9, 15, 0), End: at(12, 9, 15, 20)}},
		},
	}
	checker := NewChecker(StaticConfig(clinic.DefaultConfig()), busy, Options{Now: fixedNow(loc)})

	tests := []struct {
		name  string
		start time.Time
		dur   time.Duration
		want  ViolationKind
	}{
		{"past date", at(12, 7, 12, 0), time.Hour, KindPastDate},
		{"beyond horizon", time.Date(2027, 1, 4, 12, 0, 0, 0, loc), time.Hour, KindBeyondHorizon},
		{"friday", at(12, 12, 12, 0), time.Hour, KindClosedDay},
		{"saturday", at(12, 13, 12, 0), time.Hour, KindClosedDay},
		{"before opening", at(12, 9, 9, 30), time.Hour, KindOutsideHours},
		{"at closing", at(12, 9, 19, 0), 30 * time.Minute, KindOutsideHours},
		{"within buffer today", at(12, 8, 10, 0), 30 * time.Minute, KindTooSoon},
		{"overruns closing", at(12, 9, 18, 30), 55 * time.Minute, KindOverrunsClosing},
		{"specialist busy", at(12, 9, 12, 30), 55 * time.Minute, KindSpecialistBusy},
		{"patient busy", at(12, 9, 14, 30), 55 * time.Minute, KindPatientBusy},
		{"free", at(12, 9, 16, 0), 55 * time.Minute, ""},
		{"back to back", at(12, 9, 12, 55), 30 * time.Minute, ""},
		{"today after buffer", at(12, 8, 10, 30), 30 * time.Minute, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := checker.Check(context.Background(), Request{
				SpecialistID: "avraam",
				PatientPhone: "+972501234567",
				Start:        tt.start,
				Duration:     tt.dur,
			})
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.want, v.Kind)
			assert.NotEmpty(t, v.Message)
		})
	}
}

func TestCheckerHolidayMessageNamesNextWorkingDay(t *testing.T) {
	loc := clinicLoc(t)
	checker := NewChecker(StaticConfig(nil), nil, Options{
		Now: func() time.Time { return time.Date(2025, 10, 5, 9, 0, 0, 0, loc) },
	})
	v, err := checker.Check(context.Background(), Request{
		Start:    time.Date(2025, 10, 9, 12, 0, 0, 0, loc),
		Duration: time.Hour,
	})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, KindHoliday, v.Kind)
	assert.True(t, v.DateProblem())
	assert.Contains(t, v.Message, "Йом Кипур")
	assert.Contains(t, v.Message, "12.10.2025")
}

func TestCheckerTooSoonMessage(t *testing.T) {
	loc := clinicLoc(t)
	checker := NewChecker(StaticConfig(nil), nil, Options{
		Now: func() time.Time { return time.Date(2025, 12, 8, 13, 10, 0, 0, loc) },
	})
	v, err := checker.Check(context.Background(), Request{
		Start:    time.Date(2025, 12, 8, 14, 0, 0, 0, loc),
		Duration: 30 * time.Minute,
	})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.TimeProblem())
	assert.Equal(t, "Нельзя записаться на время ранее 14:10 (нужно время для подготовки)", v.Message)
}

func TestCheckDay(t *testing.T) {
	loc := clinicLoc(t)
	c := NewChecker(StaticConfig(nil), nil, Options{Now: fixedNow(loc)})
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, loc) }

	v, err := c.CheckDay(context.Background(), day(12, 9))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = c.CheckDay(context.Background(), day(12, 7))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, KindPastDate, v.Kind)

	v, err = c.CheckDay(context.Background(), day(12, 12))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, KindClosedDay, v.Kind)
	assert.Equal(t, "Центр не работает в выходные дни (Пятница). Ближайший рабочий день: 14.12.2025", v.Message)
}
