package admin

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
	"github.com/moura-tracker/timeclock/internal/service/report"
	shiftsvc "github.com/moura-tracker/timeclock/internal/service/shift"
	"golang.org/x/sync/errgroup"
)

// teamLookupLimit bounds concurrent per-member date lookups for the team board.
const teamLookupLimit = 8

type AdminServiceImpl struct {
	employees  employee.EmployeeRepository
	schedules  employee.ScheduleWriter
	classifier *shiftsvc.Classifier
	renderer   *report.Renderer
	now        func() time.Time
}

func NewAdminService(
	employees employee.EmployeeRepository,
	schedules employee.ScheduleWriter,
	classifier *shiftsvc.Classifier,
	renderer *report.Renderer,
) employee.AdminService {
	return &AdminServiceImpl{
		employees:  employees,
		schedules:  schedules,
		classifier: classifier,
		renderer:   renderer,
		now:        time.Now,
	}
}

func requireAdmin(ctx context.Context) error {
	session, err := auth.MustSession(ctx)
	if err != nil {
		return err
	}
	if !session.IsAdmin() {
		return auth.ErrAdminPrivilegeRequired
	}
	return nil
}

// TeamStatus lists each employee's latest period, working members first.
func (s *AdminServiceImpl) TeamStatus(ctx context.Context) (employee.TeamStatusResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return employee.TeamStatusResponse{}, err
	}

	records, err := s.employees.LatestRecords(ctx)
	if err != nil {
		return employee.TeamStatusResponse{}, fmt.Errorf("failed to load team status: %w", err)
	}

	now := s.now()
	badges, err := s.teamBadges(ctx, records, now)
	if err != nil {
		return employee.TeamStatusResponse{}, err
	}

	resp := employee.TeamStatusResponse{Members: make([]employee.TeamMemberResponse, 0, len(records))}
	for i, rec := range records {
		p := rec.Period()
		member := employee.TeamMemberResponse{
			PeriodID:   rec.PeriodID,
			EmployeeID: rec.EmployeeID,
			Name:       rec.Name,
			Date:       p.Date.String(),
			StartTime:  p.CheckIn.Short(),
		}

		if p.IsOpen() {
			member.Status = employee.TeamStatusWorking
			member.DurationSeconds = timecalc.ElapsedSecondsAt(p.Date, p.CheckIn, now)
			resp.Working++
		} else {
			member.Status = employee.TeamStatusFinished
			end := p.CheckOut.Short()
			member.EndTime = &end
			if seconds, ok := p.ClosedDuration(); ok {
				member.DurationSeconds = seconds
			}
			resp.Finished++
		}
		member.Duration = timecalc.MustClock(member.DurationSeconds)

		member.Classification = badges[i]
		resp.Members = append(resp.Members, member)
	}

	sort.SliceStable(resp.Members, func(i, j int) bool {
		a, b := resp.Members[i], resp.Members[j]
		if a.Status != b.Status {
			return a.Status == employee.TeamStatusWorking
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return resp, nil
}

// teamBadges classifies each latest record. A closed end-of-shift record is judged
// on its date's total, so its date's other periods are loaded first.
func (s *AdminServiceImpl) teamBadges(ctx context.Context, records []employee.LatestRecord, now time.Time) ([]*shift.Classification, error) {
	badges := make([]*shift.Classification, len(records))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(teamLookupLimit)
	for i, rec := range records {
		p := rec.Period()
		if p.IsOpen() || !p.IsEndShift() {
			if badge, ok := s.classifier.ClassifyAt(p, now); ok {
				badges[i] = &badge
			}
			continue
		}

		g.Go(func() error {
			periods, err := s.employees.Report(gCtx, rec.EmployeeID, p.Date, p.Date)
			if err != nil {
				return fmt.Errorf("failed to load periods of %s on %s: %w", rec.EmployeeID, p.Date, err)
			}
			if !containsPeriod(periods, p.ID) {
				periods = append(periods, p)
			}
			if badge, ok := s.classifier.ClassifyAllAt(periods, now)[p.ID]; ok {
				badges[i] = &badge
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return badges, nil
}

func containsPeriod(periods []workperiod.WorkPeriod, id string) bool {
	for _, p := range periods {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *AdminServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.ToEmployeeResponse(e))
	}
	return out, nil
}

func (s *AdminServiceImpl) UpdateSchedule(ctx context.Context, employeeID string, req employee.UpdateScheduleRequest) (employee.ScheduleResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return employee.ScheduleResponse{}, err
	}
	if !validator.IsValidID(employeeID) {
		return employee.ScheduleResponse{}, fmt.Errorf("%w: id %q", employee.ErrEmployeeNotFound, employeeID)
	}
	if err := req.Validate(); err != nil {
		return employee.ScheduleResponse{}, err
	}

	start, end := req.Times()
	if err := s.schedules.UpdateSchedule(ctx, employeeID, start, end); err != nil {
		return employee.ScheduleResponse{}, err
	}

	scheduled, _ := timecalc.FormatMinutesToLabel((end.Seconds() - start.Seconds()) / 60)
	return employee.ScheduleResponse{
		EmployeeID:    employeeID,
		WorkStartTime: start.Short(),
		WorkEndTime:   end.Short(),
		ScheduledTime: scheduled,
	}, nil
}

// GenerateReport builds an employee's detailed report over an inclusive date range.
func (s *AdminServiceImpl) GenerateReport(ctx context.Context, req employee.ReportRequest) (employee.ReportResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return employee.ReportResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.ReportResponse{}, err
	}
	start, end := req.Range()

	var (
		periods []workperiod.WorkPeriod
		name    string
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		periods, err = s.employees.Report(gCtx, req.EmployeeID, start, end)
		return err
	})

	g.Go(func() error {
		employees, err := s.employees.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to resolve employee: %w", err)
		}
		for _, e := range employees {
			if e.ID == req.EmployeeID {
				name = e.Name
				return nil
			}
		}
		return fmt.Errorf("%w: id %s", employee.ErrEmployeeNotFound, req.EmployeeID)
	})

	if err := g.Wait(); err != nil {
		return employee.ReportResponse{}, err
	}

	return s.buildReport(req.EmployeeID, name, start, end, periods), nil
}

func (s *AdminServiceImpl) buildReport(employeeID, name string, start, end timecalc.Date, periods []workperiod.WorkPeriod) employee.ReportResponse {
	now := s.now()
	badges := s.classifier.ClassifyAllAt(periods, now)
	target := s.classifier.Config().TargetSeconds()

	rows := make([]employee.ReportRow, 0, len(periods))
	for _, p := range periods {
		row := employee.ReportRow{
			PeriodID:    p.ID,
			Date:        p.Date.String(),
			CheckInTime: p.CheckIn.Short(),
			ReasonLabel: p.ReasonLabel(),
			Details:     p.Details,
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
			row.Classification = &badge
		}
		rows = append(rows, row)
	}

	totals := shiftsvc.DailyTotals(periods)
	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := make([]employee.ReportDay, 0, len(dates))
	var total int64
	for _, d := range dates {
		seconds := totals[d]
		total += seconds
		days = append(days, employee.ReportDay{
			Date:         d,
			TotalSeconds: seconds,
			Total:        timecalc.MustClock(seconds),
			Balance:      timecalc.FormatSignedBalance(seconds, target),
		})
	}

	expected := int64(len(days)) * target
	return employee.ReportResponse{
		ReportID:   uuid.NewString(),
		EmployeeID: employeeID,
		Employee:   name,
		StartDate:  start.String(),
		EndDate:    end.String(),
		Rows:       rows,
		Days:       days,
		Summary: employee.ReportSummary{
			TotalSeconds:      total,
			Total:             timecalc.MustClock(total),
			TotalHours:        timecalc.HoursTwoDecimals(total),
			WorkedDayCount:    len(days),
			TargetSeconds:     expected,
			Balance:           timecalc.FormatSignedBalance(total, expected),
			IsPositiveBalance: total >= expected,
		},
	}
}

func (s *AdminServiceImpl) ExportReportPDF(ctx context.Context, req employee.ReportRequest) ([]byte, string, error) {
	rep, err := s.GenerateReport(ctx, req)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		checkOut := "-"
		if r.CheckOutTime != nil {
			checkOut = *r.CheckOutTime
		}
		status := ""
		if r.Classification != nil {
			status = r.Classification.Label
		}
		rows = append(rows, []string{r.Date, r.CheckInTime, checkOut, r.ReasonLabel, r.Duration, status})
	}

	pdf, err := s.renderer.Render(report.Table{
		Title:    "Attendance report",
		Subtitle: []string{rep.Employee, fmt.Sprintf("%s to %s", rep.StartDate, rep.EndDate)},
		Header:   []string{"Date", "Check-in", "Check-out", "Reason", "Duration", "Status"},
		Widths:   []float64{26, 22, 22, 46, 24, 46},
		Rows:     rows,
		Footer: []string{
			fmt.Sprintf("Total worked: %s (%d days)", rep.Summary.Total, rep.Summary.WorkedDayCount),
			"Balance: " + rep.Summary.Balance,
			"Report " + rep.ReportID,
		},
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, report.Filename("report", rep.EmployeeID, rep.StartDate, rep.EndDate), nil
}

// Ranking numbers the backend's ranking and labels each total.
func (s *AdminServiceImpl) Ranking(ctx context.Context) ([]employee.RankingResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	records, err := s.employees.Ranking(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}

	out := make([]employee.RankingResponse, 0, len(records))
	for i, r := range records {
		minutes := int64(math.Round(r.TotalHours * 60))
		if minutes < 0 {
			minutes = 0
		}
		label, _ := timecalc.FormatMinutesToLabel(minutes)
		out = append(out, employee.RankingResponse{
			Position:   i + 1,
			Name:       r.Name,
			TotalHours: r.TotalHours,
			Label:      label,
		})
	}
	return out, nil
}

