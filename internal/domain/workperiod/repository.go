package workperiod

import (
	"context"

	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// Reader loads an employee's work periods.
type Reader interface {
	// ListByEmployee returns one page of periods, newest first, and the total count.
	ListByEmployee(ctx context.Context, employeeID string, filter Filter) ([]WorkPeriod, int64, error)

	// ListRange returns every period whose date falls in [start, end].
	ListRange(ctx context.Context, employeeID string, start, end timecalc.Date) ([]WorkPeriod, error)

	// FindOpen returns the open period, or ErrNoOpenPeriod.
	FindOpen(ctx context.Context, employeeID string) (WorkPeriod, error)
}

// Writer records check-ins and check-outs. Only the backend creates or closes periods.
type Writer interface {
	CheckIn(ctx context.Context, employeeID string) (WorkPeriod, error)
	CheckOut(ctx context.Context, employeeID string, reason Reason, details string) (WorkPeriod, error)
}
