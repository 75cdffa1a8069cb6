package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/handler/http/response"
)

type AdminHandler interface {
	TeamStatus(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
	UpdateSchedule(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)
	ReportPDF(w http.ResponseWriter, r *http.Request)
	Ranking(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	adminService employee.AdminService
}

func NewAdminHandler(adminService employee.AdminService) AdminHandler {
	return &adminHandlerImpl{
		adminService: adminService,
	}
}

func (h *adminHandlerImpl) TeamStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.adminService.TeamStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func (h *adminHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.adminService.ListEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employees)
}

func (h *adminHandlerImpl) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req employee.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateSchedule decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	schedule, err := h.adminService.UpdateSchedule(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule updated", schedule)
}

func reportRequestFrom(r *http.Request) employee.ReportRequest {
	q := r.URL.Query()
	return employee.ReportRequest{
		EmployeeID: q.Get("employee_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}
}

func (h *adminHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	req := reportRequestFrom(r)
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.adminService.GenerateReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report)
}

func (h *adminHandlerImpl) ReportPDF(w http.ResponseWriter, r *http.Request) {
	req := reportRequestFrom(r)
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	body, filename, err := h.adminService.ExportReportPDF(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.PDF(w, filename, body)
}

func (h *adminHandlerImpl) Ranking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.adminService.Ranking(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, ranking)
}
