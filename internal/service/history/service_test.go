package history

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/history"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
	"github.com/moura-tracker/timeclock/internal/service/report"
	shiftsvc "github.com/moura-tracker/timeclock/internal/service/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryReader serves periods from a slice, mimicking the repositories' ordering.
type memoryReader struct {
	periods []workperiod.WorkPeriod
	err     error
}

func (m *memoryReader) sorted(asc bool) []workperiod.WorkPeriod {
	out := append([]workperiod.WorkPeriod(nil), m.periods...)
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].StartedAt().Before(out[j].StartedAt())
		}
		return out[i].StartedAt().After(out[j].StartedAt())
	})
	return out
}

func (m *memoryReader) ListByEmployee(_ context.Context, _ string, f workperiod.Filter) ([]workperiod.WorkPeriod, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var matched []workperiod.WorkPeriod
	for _, p := range m.sorted(false) {
		if f.Date != nil && p.Date != *f.Date {
			continue
		}
		matched = append(matched, p)
	}
	total := int64(len(matched))
	if f.Limit > 0 {
		offset := (f.Page - 1) * f.Limit
		if offset >= len(matched) {
			return nil, total, nil
		}
		end := offset + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

func (m *memoryReader) ListRange(_ context.Context, _ string, start, end timecalc.Date) ([]workperiod.WorkPeriod, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []workperiod.WorkPeriod
	for _, p := range m.sorted(true) {
		if !p.Date.Before(start) && !end.Before(p.Date) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryReader) FindOpen(context.Context, string) (workperiod.WorkPeriod, error) {
	if m.err != nil {
		return workperiod.WorkPeriod{}, m.err
	}
	for _, p := range m.periods {
		if p.IsOpen() {
			return p, nil
		}
	}
	return workperiod.WorkPeriod{}, workperiod.ErrNoOpenPeriod
}

func period(t *testing.T, id, date, in, out string, seconds int64, reason workperiod.Reason) workperiod.WorkPeriod {
	t.Helper()
	d, err := timecalc.ParseDate(date)
	require.NoError(t, err)
	checkIn, err := timecalc.ParseTimeOfDay(in)
	require.NoError(t, err)
	p := workperiod.WorkPeriod{ID: id, EmployeeID: "7", Date: d, CheckIn: checkIn}
	if out != "" {
		checkOut, err := timecalc.ParseTimeOfDay(out)
		require.NoError(t, err)
		p.CheckOut = &checkOut
		p.DurationSeconds = &seconds
		p.Reason = &reason
	}
	return p
}

var fixedNow = time.Date(2026, time.January, 16, 10, 30, 0, 0, time.UTC)

func newService(reader workperiod.Reader) *HistoryServiceImpl {
	cfg := shift.DefaultConfig()
	return &HistoryServiceImpl{
		periods:    reader,
		classifier: shiftsvc.NewClassifier(cfg),
		engine:     shiftsvc.NewEngine(cfg),
		renderer:   report.NewRenderer(),
		now:        func() time.Time { return fixedNow },
	}
}

func sessionCtx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{Token: "t", EmployeeID: "7", Email: "ana@moura.com", Role: auth.RoleUser})
}

func sampleReader(t *testing.T) *memoryReader {
	return &memoryReader{periods: []workperiod.WorkPeriod{
		period(t, "1", "2026-01-15", "08:00:00", "12:00:00", 14400, workperiod.ReasonLunch),
		period(t, "2", "2026-01-15", "13:00:00", "17:30:00", 16200, workperiod.ReasonEndShift),
		period(t, "3", "2026-01-16", "08:00:00", "", 0, ""),
	}}
}

func TestGetHistory_RowsAndBadges(t *testing.T) {
	svc := newService(sampleReader(t))

	resp, err := svc.GetHistory(sessionCtx(), history.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalItems)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, history.DefaultPageLimit, resp.Limit)
	require.Len(t, resp.Rows, 3)

	open := resp.Rows[0]
	assert.True(t, open.InProgress)
	assert.Nil(t, open.CheckOutTime)
	assert.Equal(t, "02:30:00", open.Duration)
	require.NotNil(t, open.Status)
	assert.Equal(t, shift.StatusInProgress, open.Status.Status)

	endShift := resp.Rows[1]
	assert.Equal(t, "13:00", endShift.CheckInTime)
	require.NotNil(t, endShift.Status)
	assert.Equal(t, shift.StatusOvertime, endShift.Status.Status, "judged on the 8h30 daily total")
	assert.Equal(t, "+00:30:00", endShift.Status.Balance)

	lunch := resp.Rows[2]
	assert.Nil(t, lunch.Status)
	assert.Equal(t, "Lunch", lunch.ReasonLabel)
	assert.Equal(t, "04:00:00", lunch.Duration)
}

func TestGetHistory_PageSplittingADateKeepsDailyJudgment(t *testing.T) {
	svc := newService(sampleReader(t))

	resp, err := svc.GetHistory(sessionCtx(), history.HistoryFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalPages())
	require.Len(t, resp.Rows, 1)
	require.NotNil(t, resp.Rows[0].Status)
	assert.Equal(t, shift.StatusOvertime, resp.Rows[0].Status.Status)
}

func TestGetHistory_Validation(t *testing.T) {
	svc := newService(sampleReader(t))
	bad := "16/01/2026"

	_, err := svc.GetHistory(sessionCtx(), history.HistoryFilter{Date: &bad})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	_, err = svc.GetHistory(context.Background(), history.HistoryFilter{})
	assert.ErrorIs(t, err, auth.ErrSessionMissing)
}

func TestGetDashboard(t *testing.T) {
	svc := newService(sampleReader(t))

	resp, err := svc.GetDashboard(sessionCtx())
	require.NoError(t, err)

	assert.True(t, resp.Today.Working)
	assert.Equal(t, int64(9000), resp.Today.ElapsedSeconds)
	assert.Equal(t, int64(9000), resp.Today.TotalSeconds)
	assert.Equal(t, "-05:30:00", resp.Today.Balance)
	require.Len(t, resp.Weekly.Series, 7)
	assert.Equal(t, 8.5, resp.Weekly.Series[5])
	assert.Equal(t, 0.0, resp.Weekly.Series[6])
	assert.Equal(t, 2, resp.Monthly.WorkedDayCount)
	assert.Equal(t, int64(480), resp.TargetMinutes)
}

func TestGetDashboard_NotWorking(t *testing.T) {
	reader := &memoryReader{periods: []workperiod.WorkPeriod{
		period(t, "5", "2026-01-16", "06:00:00", "10:00:00", 14400, workperiod.ReasonEndShift),
	}}
	resp, err := newService(reader).GetDashboard(sessionCtx())
	require.NoError(t, err)

	assert.False(t, resp.Today.Working)
	assert.Equal(t, int64(14400), resp.Today.TotalSeconds)
	require.NotNil(t, resp.Today.Classification)
	assert.Equal(t, shift.StatusIncomplete, resp.Today.Classification.Status)
}

func TestGetDashboard_PropagatesRepositoryError(t *testing.T) {
	boom := errors.New("backend down")
	_, err := newService(&memoryReader{err: boom}).GetDashboard(sessionCtx())
	assert.ErrorIs(t, err, boom)
}

func TestGetWeeklyChart(t *testing.T) {
	svc := newService(sampleReader(t))

	chart, err := svc.GetWeeklyChart(sessionCtx(), "2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, "15/01", chart.Categories[6])
	assert.Equal(t, 8.5, chart.Series[6])

	_, err = svc.GetWeeklyChart(sessionCtx(), "yesterday")
	assert.ErrorIs(t, err, history.ErrInvalidDate)
}

func TestGetMonthlyStats(t *testing.T) {
	svc := newService(sampleReader(t))

	stats, err := svc.GetMonthlyStats(sessionCtx(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-01", stats.Month)
	assert.Equal(t, int64(30600), stats.TotalSeconds)
	assert.Equal(t, 2, stats.WorkedDayCount)
	assert.False(t, stats.IsPositiveBalance)

	stats, err = svc.GetMonthlyStats(sessionCtx(), "2025-12")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.WorkedDayCount)

	_, err = svc.GetMonthlyStats(sessionCtx(), "2025-13")
	assert.ErrorIs(t, err, history.ErrInvalidMonth)
}

func TestExportHistoryPDF(t *testing.T) {
	svc := newService(sampleReader(t))

	pdf, name, err := svc.ExportHistoryPDF(sessionCtx(), history.HistoryFilter{Page: 3, Limit: 1})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Equal(t, "history-2026-01-16.pdf", name)
}
