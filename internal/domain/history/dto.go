package history

import (
	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type HistoryFilter struct {
	Date  *string `json:"date,omitempty"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != nil {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed " + validator.Itoa(MaxPageLimit),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToFilter converts a validated request filter.
func (f HistoryFilter) ToFilter() workperiod.Filter {
	out := workperiod.Filter{Page: f.Page, Limit: f.Limit}
	if f.Date != nil {
		d, err := timecalc.ParseDate(*f.Date)
		if err == nil {
			out.Date = &d
		}
	}
	return out
}

// HistoryRow is one period ready for display.
type HistoryRow struct {
	ID              string                `json:"id"`
	Date            string                `json:"date"`
	CheckInTime     string                `json:"checkin_time"`
	CheckOutTime    *string               `json:"checkout_time"`
	ReasonID        *string               `json:"reason_id"`
	ReasonLabel     string                `json:"reason_label"`
	Details         *string               `json:"details,omitempty"`
	InProgress      bool                  `json:"in_progress"`
	DurationSeconds int64                 `json:"duration_seconds"`
	Duration        string                `json:"duration"`
	Status          *shift.Classification `json:"status,omitempty"`
}

type HistoryResponse struct {
	Rows       []HistoryRow `json:"rows"`
	TotalItems int64        `json:"-"`
	Page       int          `json:"-"`
	Limit      int          `json:"-"`
}

// TotalPages is ceil(TotalItems / Limit).
func (r HistoryResponse) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return int((r.TotalItems + int64(r.Limit) - 1) / int64(r.Limit))
}

type TodayResponse struct {
	Date           string                `json:"date"`
	Working        bool                  `json:"working"`
	OpenPeriodID   *string               `json:"open_period_id"`
	ElapsedSeconds int64                 `json:"elapsed_seconds"`
	ClosedSeconds  int64                 `json:"closed_seconds"`
	TotalSeconds   int64                 `json:"total_seconds"`
	Total          string                `json:"total"`
	Balance        string                `json:"balance"`
	Classification *shift.Classification `json:"classification,omitempty"`
}

type DashboardResponse struct {
	Today         TodayResponse      `json:"today"`
	Weekly        shift.WeeklyChart  `json:"weekly"`
	Monthly       shift.MonthlyStats `json:"monthly"`
	TargetMinutes int64              `json:"target_minutes"`
}
