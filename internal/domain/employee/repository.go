package employee

import (
	"context"

	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// EmployeeRepository reads the team's data for administrators.
type EmployeeRepository interface {
	List(ctx context.Context) ([]Employee, error)

	// LatestRecords returns the newest work period of every employee that has one.
	LatestRecords(ctx context.Context) ([]LatestRecord, error)

	// Report returns an employee's periods with dates in [start, end].
	Report(ctx context.Context, employeeID string, start, end timecalc.Date) ([]workperiod.WorkPeriod, error)

	// Ranking returns worked hours per employee over the last seven days, highest first.
	Ranking(ctx context.Context) ([]RankingRecord, error)
}

// ScheduleWriter stores an employee's expected working hours. The backend owns it.
type ScheduleWriter interface {
	UpdateSchedule(ctx context.Context, employeeID string, start, end timecalc.TimeOfDay) error
}
