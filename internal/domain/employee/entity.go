package employee

import (
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

type Employee struct {
	ID            string
	Name          string
	Email         string
	Role          auth.Role
	WorkStartTime *timecalc.TimeOfDay
	WorkEndTime   *timecalc.TimeOfDay
}

// LatestRecord is an employee's most recent work period, as the team board needs it.
type LatestRecord struct {
	PeriodID        string
	EmployeeID      string
	Name            string
	StartTime       time.Time
	EndTime         *time.Time
	DurationSeconds *int64
	Reason          *workperiod.Reason
}

// Period converts the record into a work period under the UTC wall-clock contract.
func (r LatestRecord) Period() workperiod.WorkPeriod {
	p := workperiod.WorkPeriod{
		ID:              r.PeriodID,
		EmployeeID:      r.EmployeeID,
		Date:            timecalc.DateOf(r.StartTime),
		CheckIn:         timecalc.TimeOfDayOf(r.StartTime),
		DurationSeconds: r.DurationSeconds,
		Reason:          r.Reason,
	}
	if r.EndTime != nil {
		out := timecalc.TimeOfDayOf(*r.EndTime)
		p.CheckOut = &out
	} else {
		p.DurationSeconds = nil
	}
	return p
}

// RankingRecord is an employee's worked hours over the ranking window.
type RankingRecord struct {
	Name       string
	TotalHours float64
}
