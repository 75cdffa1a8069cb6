package employee

import "context"

type AdminService interface {
	TeamStatus(ctx context.Context) (TeamStatusResponse, error)
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)
	UpdateSchedule(ctx context.Context, employeeID string, req UpdateScheduleRequest) (ScheduleResponse, error)
	GenerateReport(ctx context.Context, req ReportRequest) (ReportResponse, error)
	ExportReportPDF(ctx context.Context, req ReportRequest) ([]byte, string, error)
	Ranking(ctx context.Context) ([]RankingResponse, error)
}
