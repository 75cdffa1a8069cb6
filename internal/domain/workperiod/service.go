package workperiod

import "context"

type WorkService interface {
	CheckIn(ctx context.Context) (PeriodResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (PeriodResponse, error)
	CurrentStatus(ctx context.Context) (StatusResponse, error)
	ShiftConfig(ctx context.Context) ShiftConfigResponse

	// OpenPeriod returns the caller's open period, or ErrNoOpenPeriod.
	OpenPeriod(ctx context.Context) (WorkPeriod, error)
}
