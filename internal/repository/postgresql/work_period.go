package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/database"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

const workRecordColumns = `
	id::text, employee_id::text, checkin_time, checkout_time,
	duration_seconds, reason_id, details
`

type workPeriodRepositoryImpl struct {
	db *database.DB
}

// NewWorkPeriodRepository reads work periods straight from the backend's
// work_records table. Writes always go through the backend.
func NewWorkPeriodRepository(db *database.DB) workperiod.Reader {
	return &workPeriodRepositoryImpl{db: db}
}

type workRecordRow struct {
	ID              string
	EmployeeID      string
	CheckInTime     time.Time
	CheckOutTime    *time.Time
	DurationSeconds *int64
	ReasonID        *string
	Details         *string
}

func (r workRecordRow) toEntity() workperiod.WorkPeriod {
	p := workperiod.WorkPeriod{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Date:       timecalc.DateOf(r.CheckInTime),
		CheckIn:    timecalc.TimeOfDayOf(r.CheckInTime),
		Details:    r.Details,
	}
	if r.CheckOutTime != nil {
		out := timecalc.TimeOfDayOf(*r.CheckOutTime)
		p.CheckOut = &out
		p.DurationSeconds = r.DurationSeconds
	}
	if r.ReasonID != nil && *r.ReasonID != "" {
		reason := workperiod.Reason(strings.ToLower(*r.ReasonID))
		p.Reason = &reason
	}
	return p
}

func scanWorkRecords(rows pgx.Rows) ([]workperiod.WorkPeriod, error) {
	defer rows.Close()

	var periods []workperiod.WorkPeriod
	for rows.Next() {
		var row workRecordRow
		if err := rows.Scan(
			&row.ID, &row.EmployeeID, &row.CheckInTime, &row.CheckOutTime,
			&row.DurationSeconds, &row.ReasonID, &row.Details,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work record: %w", err)
		}
		periods = append(periods, row.toEntity())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work records: %w", err)
	}
	return periods, nil
}

// buildFilter renders the WHERE clause for an employee's history. Date bounds apply
// to the check-in day.
func buildFilter(employeeID string, filter workperiod.Filter) (string, []interface{}) {
	conditions := []string{"employee_id::text = $1"}
	args := []interface{}{employeeID}

	addDate := func(op string, d *timecalc.Date) {
		if d == nil {
			return
		}
		args = append(args, d.Time())
		conditions = append(conditions, fmt.Sprintf("checkin_time::date %s $%d::date", op, len(args)))
	}
	addDate("=", filter.Date)
	addDate(">=", filter.StartDate)
	addDate("<=", filter.EndDate)

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *workPeriodRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter workperiod.Filter) ([]workperiod.WorkPeriod, int64, error) {
	where, args := buildFilter(employeeID, filter)

	var (
		periods []workperiod.WorkPeriod
		total   int64
	)
	err := WithSnapshot(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM work_records "+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count work records: %w", err)
		}

		query := "SELECT " + workRecordColumns + " FROM work_records " + where + " ORDER BY checkin_time DESC, id DESC"
		pageArgs := args
		if filter.Limit > 0 {
			page := filter.Page
			if page < 1 {
				page = 1
			}
			pageArgs = append(append([]interface{}{}, args...), filter.Limit, (page-1)*filter.Limit)
			query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		}

		rows, err := q.Query(ctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to list work records: %w", err)
		}
		periods, err = scanWorkRecords(rows)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	if periods == nil {
		periods = []workperiod.WorkPeriod{}
	}
	return periods, total, nil
}

func (r *workPeriodRepositoryImpl) ListRange(ctx context.Context, employeeID string, start, end timecalc.Date) ([]workperiod.WorkPeriod, error) {
	where, args := buildFilter(employeeID, workperiod.Filter{StartDate: &start, EndDate: &end})

	rows, err := GetQuerier(ctx, r.db).Query(ctx,
		"SELECT "+workRecordColumns+" FROM work_records "+where+" ORDER BY checkin_time ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work records in range: %w", err)
	}
	return scanWorkRecords(rows)
}

func (r *workPeriodRepositoryImpl) FindOpen(ctx context.Context, employeeID string) (workperiod.WorkPeriod, error) {
	query := `
		SELECT ` + workRecordColumns + `
		FROM work_records
		WHERE employee_id::text = $1
		  AND checkout_time IS NULL
		ORDER BY checkin_time DESC
		LIMIT 1
	`

	var row workRecordRow
	err := GetQuerier(ctx, r.db).QueryRow(ctx, query, employeeID).Scan(
		&row.ID, &row.EmployeeID, &row.CheckInTime, &row.CheckOutTime,
		&row.DurationSeconds, &row.ReasonID, &row.Details,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workperiod.WorkPeriod{}, workperiod.ErrNoOpenPeriod
		}
		return workperiod.WorkPeriod{}, fmt.Errorf("failed to find open work record: %w", err)
	}
	return row.toEntity(), nil
}
