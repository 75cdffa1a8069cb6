package employee

import (
	"github.com/moura-tracker/timeclock/internal/domain/auth"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
)

type EmployeeResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          auth.Role `json:"role"`
	WorkStartTime *string   `json:"work_start_time"`
	WorkEndTime   *string   `json:"work_end_time"`
}

func ToEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:    e.ID,
		Name:  e.Name,
		Email: e.Email,
		Role:  e.Role,
	}
	if e.WorkStartTime != nil {
		s := e.WorkStartTime.Short()
		resp.WorkStartTime = &s
	}
	if e.WorkEndTime != nil {
		s := e.WorkEndTime.Short()
		resp.WorkEndTime = &s
	}
	return resp
}

type UpdateScheduleRequest struct {
	WorkStartTime string `json:"work_start_time"`
	WorkEndTime   string `json:"work_end_time"`
}

func (r *UpdateScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	startOK := validator.IsValidClock(r.WorkStartTime)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "work_start_time",
			Message: "work_start_time must be in HH:MM format",
		})
	}
	endOK := validator.IsValidClock(r.WorkEndTime)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "work_end_time",
			Message: "work_end_time must be in HH:MM format",
		})
	}

	if startOK && endOK {
		start, _ := timecalc.ParseTimeOfDay(r.WorkStartTime)
		end, _ := timecalc.ParseTimeOfDay(r.WorkEndTime)
		if end.Seconds() <= start.Seconds() {
			errs = append(errs, validator.ValidationError{
				Field:   "work_end_time",
				Message: "work_end_time must be after work_start_time",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Times returns the parsed schedule. Call Validate first.
func (r *UpdateScheduleRequest) Times() (timecalc.TimeOfDay, timecalc.TimeOfDay) {
	start, _ := timecalc.ParseTimeOfDay(r.WorkStartTime)
	end, _ := timecalc.ParseTimeOfDay(r.WorkEndTime)
	return start, end
}

type ScheduleResponse struct {
	EmployeeID    string `json:"employee_id"`
	WorkStartTime string `json:"work_start_time"`
	WorkEndTime   string `json:"work_end_time"`
	ScheduledTime string `json:"scheduled_time"`
}

const (
	TeamStatusWorking  = "working"
	TeamStatusFinished = "finished"
)

type TeamMemberResponse struct {
	PeriodID        string                `json:"period_id"`
	EmployeeID      string                `json:"employee_id"`
	Name            string                `json:"name"`
	Status          string                `json:"status"`
	Date            string                `json:"date"`
	StartTime       string                `json:"start_time"`
	EndTime         *string               `json:"end_time"`
	DurationSeconds int64                 `json:"duration_seconds"`
	Duration        string                `json:"duration"`
	Classification  *shift.Classification `json:"classification,omitempty"`
}

type TeamStatusResponse struct {
	Working  int                  `json:"working"`
	Finished int                  `json:"finished"`
	Members  []TeamMemberResponse `json:"members"`
}

type ReportRequest struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrInvalidDateRange.Error(),
			})
		} else if end.Sub(start).Hours() > 366*24 {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrReportRangeTooBig.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range returns the parsed bounds. Call Validate first.
func (r *ReportRequest) Range() (timecalc.Date, timecalc.Date) {
	start, _ := timecalc.ParseDate(r.StartDate)
	end, _ := timecalc.ParseDate(r.EndDate)
	return start, end
}

type ReportRow struct {
	PeriodID        string                `json:"period_id"`
	Date            string                `json:"date"`
	CheckInTime     string                `json:"checkin_time"`
	CheckOutTime    *string               `json:"checkout_time"`
	ReasonID        *string               `json:"reason_id"`
	ReasonLabel     string                `json:"reason_label"`
	Details         *string               `json:"details,omitempty"`
	DurationSeconds int64                 `json:"duration_seconds"`
	Duration        string                `json:"duration"`
	Classification  *shift.Classification `json:"classification,omitempty"`
}

type ReportDay struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"total_seconds"`
	Total        string `json:"total"`
	Balance      string `json:"balance"`
}

type ReportSummary struct {
	TotalSeconds      int64   `json:"total_seconds"`
	Total             string  `json:"total"`
	TotalHours        float64 `json:"total_hours"`
	WorkedDayCount    int     `json:"worked_day_count"`
	TargetSeconds     int64   `json:"target_seconds"`
	Balance           string  `json:"balance"`
	IsPositiveBalance bool    `json:"is_positive_balance"`
}

type ReportResponse struct {
	ReportID   string        `json:"report_id"`
	EmployeeID string        `json:"employee_id"`
	Employee   string        `json:"employee,omitempty"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
	Rows       []ReportRow   `json:"rows"`
	Days       []ReportDay   `json:"days"`
	Summary    ReportSummary `json:"summary"`
}

type RankingResponse struct {
	Position   int     `json:"position"`
	Name       string  `json:"name"`
	TotalHours float64 `json:"total_hours"`
	Label      string  `json:"label"`
}
