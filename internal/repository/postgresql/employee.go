package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/database"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// rankingWindowDays is the ranking's look-back, today included.
const rankingWindowDays = 7

type employeeRepositoryImpl struct {
	db  *database.DB
	now func() time.Time
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db, now: time.Now}
}

func (e *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id::text, name, email, role, work_start_time::text, work_end_time::text
		FROM employees
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		var (
			emp        employee.Employee
			role       string
			start, end *string
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Email, &role, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.Role = auth.RoleUser
		if strings.EqualFold(strings.TrimPrefix(role, "ROLE_"), string(auth.RoleAdmin)) {
			emp.Role = auth.RoleAdmin
		}
		emp.WorkStartTime = scheduleTime(emp.ID, start)
		emp.WorkEndTime = scheduleTime(emp.ID, end)
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

func scheduleTime(employeeID string, raw *string) *timecalc.TimeOfDay {
	if raw == nil || *raw == "" {
		return nil
	}
	tod, err := timecalc.ParseTimeOfDay(*raw)
	if err != nil {
		slog.Warn("Ignoring malformed schedule time", "employee_id", employeeID, "value", *raw)
		return nil
	}
	return &tod
}

// LatestRecords picks each employee's newest work record.
func (e *employeeRepositoryImpl) LatestRecords(ctx context.Context) ([]employee.LatestRecord, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT DISTINCT ON (w.employee_id)
			w.id::text, w.employee_id::text, emp.name,
			w.checkin_time, w.checkout_time, w.duration_seconds, w.reason_id
		FROM work_records w
		JOIN employees emp ON emp.id = w.employee_id
		ORDER BY w.employee_id, w.checkin_time DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest work records: %w", err)
	}
	defer rows.Close()

	records := []employee.LatestRecord{}
	for rows.Next() {
		var (
			rec    employee.LatestRecord
			reason *string
		)
		if err := rows.Scan(&rec.PeriodID, &rec.EmployeeID, &rec.Name,
			&rec.StartTime, &rec.EndTime, &rec.DurationSeconds, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan latest work record: %w", err)
		}
		if reason != nil && *reason != "" {
			r := workperiod.Reason(strings.ToLower(*reason))
			rec.Reason = &r
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest work records: %w", err)
	}
	return records, nil
}

func (e *employeeRepositoryImpl) Report(ctx context.Context, employeeID string, start, end timecalc.Date) ([]workperiod.WorkPeriod, error) {
	q := GetQuerier(ctx, e.db)

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM employees WHERE id::text = $1)", employeeID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up employee: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %s", employee.ErrEmployeeNotFound, employeeID)
	}

	where, args := buildFilter(employeeID, workperiod.Filter{StartDate: &start, EndDate: &end})
	rows, err := q.Query(ctx,
		"SELECT "+workRecordColumns+" FROM work_records "+where+" ORDER BY checkin_time ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report records: %w", err)
	}
	periods, err := scanWorkRecords(rows)
	if err != nil {
		return nil, err
	}
	if periods == nil {
		periods = []workperiod.WorkPeriod{}
	}
	return periods, nil
}

// Ranking sums closed durations per employee over the ranking window.
func (e *employeeRepositoryImpl) Ranking(ctx context.Context) ([]employee.RankingRecord, error) {
	q := GetQuerier(ctx, e.db)
	since := timecalc.DateOf(e.now().UTC()).AddDays(-(rankingWindowDays - 1)).Time()

	query := `
		SELECT emp.name, COALESCE(SUM(w.duration_seconds), 0)::bigint AS total_seconds
		FROM work_records w
		JOIN employees emp ON emp.id = w.employee_id
		WHERE w.checkin_time >= $1
		  AND w.checkout_time IS NOT NULL
		  AND w.duration_seconds IS NOT NULL
		GROUP BY emp.id, emp.name
		ORDER BY total_seconds DESC, emp.name ASC
	`

	rows, err := q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ranking: %w", err)
	}
	defer rows.Close()

	ranking := []employee.RankingRecord{}
	for rows.Next() {
		var (
			name    string
			seconds int64
		)
		if err := rows.Scan(&name, &seconds); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		ranking = append(ranking, employee.RankingRecord{
			Name:       name,
			TotalHours: timecalc.HoursTwoDecimals(seconds),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ranking: %w", err)
	}
	return ranking, nil
}
