package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/history"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	"github.com/moura-tracker/timeclock/internal/service/report"
	shiftsvc "github.com/moura-tracker/timeclock/internal/service/shift"
	"golang.org/x/sync/errgroup"
)

type HistoryServiceImpl struct {
	periods    workperiod.Reader
	classifier *shiftsvc.Classifier
	engine     *shiftsvc.Engine
	renderer   *report.Renderer
	now        func() time.Time
}

func NewHistoryService(
	periods workperiod.Reader,
	classifier *shiftsvc.Classifier,
	engine *shiftsvc.Engine,
	renderer *report.Renderer,
) history.HistoryService {
	return &HistoryServiceImpl{
		periods:    periods,
		classifier: classifier,
		engine:     engine,
		renderer:   renderer,
		now:        time.Now,
	}
}

func (s *HistoryServiceImpl) today() timecalc.Date {
	return timecalc.DateOf(s.now().UTC())
}

// GetHistory returns one page of the caller's periods, newest first. Badges are
// computed over every period of the dates on the page, so a date split across
// pages is still judged on its full total.
func (s *HistoryServiceImpl) GetHistory(ctx context.Context, filter history.HistoryFilter) (history.HistoryResponse, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return history.HistoryResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return history.HistoryResponse{}, err
	}

	page, total, err := s.periods.ListByEmployee(ctx, session.EmployeeID, filter.ToFilter())
	if err != nil {
		return history.HistoryResponse{}, fmt.Errorf("failed to load history: %w", err)
	}

	badges, err := s.badgesFor(ctx, session.EmployeeID, page)
	if err != nil {
		return history.HistoryResponse{}, err
	}

	now := s.now()
	rows := make([]history.HistoryRow, 0, len(page))
	for _, p := range page {
		rows = append(rows, s.toRow(p, badges, now))
	}

	return history.HistoryResponse{
		Rows:       rows,
		TotalItems: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *HistoryServiceImpl) badgesFor(ctx context.Context, employeeID string, page []workperiod.WorkPeriod) (map[string]shift.Classification, error) {
	if len(page) == 0 {
		return map[string]shift.Classification{}, nil
	}

	first, last := page[0].Date, page[0].Date
	for _, p := range page[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
		if last.Before(p.Date) {
			last = p.Date
		}
	}

	window, err := s.periods.ListRange(ctx, employeeID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to load periods for classification: %w", err)
	}
	return s.classifier.ClassifyAllAt(window, s.now()), nil
}

func (s *HistoryServiceImpl) toRow(p workperiod.WorkPeriod, badges map[string]shift.Classification, now time.Time) history.HistoryRow {
	row := history.HistoryRow{
		ID:          p.ID,
		Date:        p.Date.String(),
		CheckInTime: p.CheckIn.Short(),
		ReasonLabel: p.ReasonLabel(),
		Details:     p.Details,
		InProgress:  p.IsOpen(),
	}
	if p.CheckOut != nil {
		out := p.CheckOut.Short()
		row.CheckOutTime = &out
	}
	if p.Reason != nil {
		id := string(*p.Reason)
		row.ReasonID = &id
	}

	if p.IsOpen() {
		row.DurationSeconds = timecalc.ElapsedSecondsAt(p.Date, p.CheckIn, now)
	} else if seconds, ok := p.ClosedDuration(); ok {
		row.DurationSeconds = seconds
	}
	row.Duration = timecalc.MustClock(row.DurationSeconds)

	if badge, ok := badges[p.ID]; ok {
		row.Status = &badge
	}
	return row
}

// GetDashboard gathers today's state, the weekly chart and the monthly stats.
func (s *HistoryServiceImpl) GetDashboard(ctx context.Context) (history.DashboardResponse, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return history.DashboardResponse{}, err
	}

	now := s.now()
	today := timecalc.DateOf(now.UTC())
	monthStart := timecalc.Date{Year: today.Year, Month: today.Month, Day: 1}
	monthEnd := timecalc.DateOf(monthStart.Time().AddDate(0, 1, -1))

	var (
		week, month []workperiod.WorkPeriod
		open        *workperiod.WorkPeriod
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		week, err = s.periods.ListRange(gCtx, session.EmployeeID, today.AddDays(-6), today)
		if err != nil {
			return fmt.Errorf("failed to load weekly periods: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		month, err = s.periods.ListRange(gCtx, session.EmployeeID, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("failed to load monthly periods: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		p, err := s.periods.FindOpen(gCtx, session.EmployeeID)
		if err != nil {
			if errors.Is(err, workperiod.ErrNoOpenPeriod) {
				return nil
			}
			return fmt.Errorf("failed to load open period: %w", err)
		}
		open = &p
		return nil
	})

	if err := g.Wait(); err != nil {
		return history.DashboardResponse{}, err
	}

	return history.DashboardResponse{
		Today:         s.todayFrom(week, open, today, now),
		Weekly:        s.engine.WeeklyChart(week, today),
		Monthly:       s.engine.MonthlyStats(month, today),
		TargetMinutes: s.classifier.Config().TargetMinutes(),
	}, nil
}

func (s *HistoryServiceImpl) todayFrom(week []workperiod.WorkPeriod, open *workperiod.WorkPeriod, today timecalc.Date, now time.Time) history.TodayResponse {
	closed := s.engine.TotalOn(week, today)
	resp := history.TodayResponse{
		Date:          today.String(),
		ClosedSeconds: closed,
	}

	if open != nil {
		elapsed := timecalc.ElapsedSecondsAt(open.Date, open.CheckIn, now)
		id := open.ID
		resp.Working = true
		resp.OpenPeriodID = &id
		resp.ElapsedSeconds = elapsed
		if badge, ok := s.classifier.ClassifyAt(*open, now); ok {
			resp.Classification = &badge
		}
		// A shift opened yesterday still counts toward today's running total.
		resp.TotalSeconds = closed + elapsed
	} else {
		resp.TotalSeconds = closed
		var todays []workperiod.WorkPeriod
		for _, p := range week {
			if p.Date == today {
				todays = append(todays, p)
			}
		}
		for _, badge := range s.classifier.ClassifyAllAt(todays, now) {
			b := badge
			resp.Classification = &b
		}
	}

	resp.Total = timecalc.MustClock(resp.TotalSeconds)
	resp.Balance = timecalc.FormatSignedBalance(resp.TotalSeconds, s.classifier.Config().TargetSeconds())
	return resp
}

// GetWeeklyChart returns the seven days ending at date, or today when date is empty.
func (s *HistoryServiceImpl) GetWeeklyChart(ctx context.Context, date string) (shift.WeeklyChart, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return shift.WeeklyChart{}, err
	}

	end := s.today()
	if date != "" {
		if end, err = timecalc.ParseDate(date); err != nil {
			return shift.WeeklyChart{}, fmt.Errorf("%w: %q", history.ErrInvalidDate, date)
		}
	}

	periods, err := s.periods.ListRange(ctx, session.EmployeeID, end.AddDays(-6), end)
	if err != nil {
		return shift.WeeklyChart{}, fmt.Errorf("failed to load weekly periods: %w", err)
	}
	return s.engine.WeeklyChart(periods, end), nil
}

// GetMonthlyStats totals a "YYYY-MM" month, or the current one when month is empty.
func (s *HistoryServiceImpl) GetMonthlyStats(ctx context.Context, month string) (shift.MonthlyStats, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return shift.MonthlyStats{}, err
	}

	today := s.today()
	start := timecalc.Date{Year: today.Year, Month: today.Month, Day: 1}
	if month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return shift.MonthlyStats{}, fmt.Errorf("%w: %q", history.ErrInvalidMonth, month)
		}
		start = timecalc.DateOf(parsed)
	}
	end := timecalc.DateOf(start.Time().AddDate(0, 1, -1))

	periods, err := s.periods.ListRange(ctx, session.EmployeeID, start, end)
	if err != nil {
		return shift.MonthlyStats{}, fmt.Errorf("failed to load monthly periods: %w", err)
	}
	return s.engine.MonthlyStats(periods, start), nil
}

// ExportHistoryPDF renders every period matching filter, ignoring pagination.
func (s *HistoryServiceImpl) ExportHistoryPDF(ctx context.Context, filter history.HistoryFilter) ([]byte, string, error) {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return nil, "", err
	}
	if err := filter.Validate(); err != nil {
		return nil, "", err
	}

	criteria := filter.ToFilter()
	criteria.Page, criteria.Limit = 0, 0

	periods, _, err := s.periods.ListByEmployee(ctx, session.EmployeeID, criteria)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load history: %w", err)
	}
	badges, err := s.badgesFor(ctx, session.EmployeeID, periods)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	rows := make([][]string, 0, len(periods))
	var closedTotal int64
	for _, p := range periods {
		row := s.toRow(p, badges, now)
		checkOut := "-"
		if row.CheckOutTime != nil {
			checkOut = *row.CheckOutTime
		}
		if !row.InProgress {
			closedTotal += row.DurationSeconds
		}
		rows = append(rows, []string{row.Date, row.CheckInTime, checkOut, row.ReasonLabel, row.Duration})
	}

	scope := "All records"
	suffix := s.today().String()
	if filter.Date != nil {
		scope = "Date: " + *filter.Date
		suffix = *filter.Date
	}

	pdf, err := s.renderer.Render(report.Table{
		Title:    "Work history",
		Subtitle: []string{session.Email, scope},
		Header:   []string{"Date", "Check-in", "Check-out", "Reason", "Duration"},
		Widths:   []float64{34, 28, 28, 64, 32},
		Rows:     rows,
		Footer:   []string{"Total worked: " + timecalc.MustClock(closedTotal)},
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, report.Filename("history", suffix), nil
}
