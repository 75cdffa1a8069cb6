package history

import (
	"context"

	"github.com/moura-tracker/timeclock/internal/domain/shift"
)

type HistoryService interface {
	GetHistory(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)
	GetDashboard(ctx context.Context) (DashboardResponse, error)
	GetWeeklyChart(ctx context.Context, date string) (shift.WeeklyChart, error)
	GetMonthlyStats(ctx context.Context, month string) (shift.MonthlyStats, error)
	ExportHistoryPDF(ctx context.Context, filter HistoryFilter) ([]byte, string, error)
}
