package http

import (
	"net/http"
	"strconv"

	"github.com/moura-tracker/timeclock/internal/domain/history"
	"github.com/moura-tracker/timeclock/internal/handler/http/response"
)

type HistoryHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ExportPDF(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Weekly(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
}

type historyHandlerImpl struct {
	historyService history.HistoryService
}

func NewHistoryHandler(historyService history.HistoryService) HistoryHandler {
	return &historyHandlerImpl{
		historyService: historyService,
	}
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func historyFilterFrom(r *http.Request) history.HistoryFilter {
	filter := history.HistoryFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", history.DefaultPageLimit),
	}
	if date := r.URL.Query().Get("date"); date != "" {
		filter.Date = &date
	}
	return filter
}

func (h *historyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := historyFilterFrom(r)
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.historyService.GetHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Rows, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages(),
	})
}

// ExportPDF renders every period matching the filter, ignoring pagination.
func (h *historyHandlerImpl) ExportPDF(w http.ResponseWriter, r *http.Request) {
	filter := historyFilterFrom(r)
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	body, filename, err := h.historyService.ExportHistoryPDF(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.PDF(w, filename, body)
}

func (h *historyHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.historyService.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, dashboard)
}

// Weekly charts the seven days ending on ?date, default today.
func (h *historyHandlerImpl) Weekly(w http.ResponseWriter, r *http.Request) {
	chart, err := h.historyService.GetWeeklyChart(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, chart)
}

func (h *historyHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	stats, err := h.historyService.GetMonthlyStats(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}
