package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/backend"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// EmployeeRepository is the admin view of the team, read through the backend API.
type EmployeeRepository interface {
	employee.EmployeeRepository
	employee.ScheduleWriter
}

type employeeRepositoryImpl struct {
	client *backend.Client
}

func NewEmployeeRepository(client *backend.Client) EmployeeRepository {
	return &employeeRepositoryImpl{client: client}
}

func (r *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	var rows []employeeDTO
	if err := r.client.Get(ctx, "/admin/employees", nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, row.toEntity())
	}
	return employees, nil
}

func (r *employeeRepositoryImpl) LatestRecords(ctx context.Context) ([]employee.LatestRecord, error) {
	var rows []teamStatusDTO
	if err := r.client.Get(ctx, "/admin/dashboard", nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch team status: %w", err)
	}

	records := make([]employee.LatestRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toEntity()
		if err != nil {
			slog.Warn("Skipping malformed team record", "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *employeeRepositoryImpl) Report(ctx context.Context, employeeID string, start, end timecalc.Date) ([]workperiod.WorkPeriod, error) {
	q := url.Values{}
	q.Set("employeeId", employeeID)
	q.Set("startDate", start.String())
	q.Set("endDate", end.String())

	var rows []workRecordDTO
	if err := r.client.Get(ctx, "/admin/report", q, &rows); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", employee.ErrEmployeeNotFound, err)
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	periods := make([]workperiod.WorkPeriod, 0, len(rows))
	for _, row := range rows {
		p, err := row.toEntity(employeeID)
		if err != nil {
			slog.Warn("Skipping malformed report record", "employee_id", employeeID, "error", err)
			continue
		}
		periods = append(periods, p)
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].StartedAt().Before(periods[j].StartedAt())
	})
	return periods, nil
}

func (r *employeeRepositoryImpl) Ranking(ctx context.Context) ([]employee.RankingRecord, error) {
	var rows []rankingDTO
	if err := r.client.Get(ctx, "/admin/ranking", nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch ranking: %w", err)
	}

	ranking := make([]employee.RankingRecord, 0, len(rows))
	for _, row := range rows {
		ranking = append(ranking, employee.RankingRecord{Name: row.Name, TotalHours: row.TotalHours})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalHours > ranking[j].TotalHours
	})
	return ranking, nil
}

func (r *employeeRepositoryImpl) UpdateSchedule(ctx context.Context, employeeID string, start, end timecalc.TimeOfDay) error {
	body := scheduleBody{WorkStartTime: start.String(), WorkEndTime: end.String()}
	path := "/admin/employees/" + url.PathEscape(employeeID) + "/schedule"

	if err := r.client.Put(ctx, path, nil, body, nil); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return fmt.Errorf("%w: %w", employee.ErrEmployeeNotFound, err)
		}
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

func roleOf(raw string) auth.Role {
	if strings.EqualFold(strings.TrimPrefix(raw, "ROLE_"), string(auth.RoleAdmin)) {
		return auth.RoleAdmin
	}
	return auth.RoleUser
}
