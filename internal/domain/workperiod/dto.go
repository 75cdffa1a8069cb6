package workperiod

import (
	"strings"

	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/pkg/validator"
)

type CheckOutRequest struct {
	ReasonID string `json:"reason_id"`
	Details  string `json:"details"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	r.ReasonID = strings.ToLower(strings.TrimSpace(r.ReasonID))
	switch {
	case validator.IsEmpty(r.ReasonID):
		errs = append(errs, validator.ValidationError{
			Field:   "reason_id",
			Message: "reason_id is required",
		})
	case !Reason(r.ReasonID).IsValid():
		errs = append(errs, validator.ValidationError{
			Field:   "reason_id",
			Message: "reason_id must be one of " + strings.Join(reasonCodes(), ", "),
		})
	case Reason(r.ReasonID) == ReasonOther && validator.IsEmpty(r.Details):
		errs = append(errs, validator.ValidationError{
			Field:   "details",
			Message: ErrDetailsRequired.Error(),
		})
	}

	if len(r.Details) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "details",
			Message: "details must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func reasonCodes() []string {
	codes := make([]string, 0, len(reasonLabels))
	for _, r := range Reasons() {
		codes = append(codes, string(r))
	}
	return codes
}

// ReasonResponse is one selectable checkout reason.
type ReasonResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func ReasonOptions() []ReasonResponse {
	out := make([]ReasonResponse, 0, len(reasonLabels))
	for _, r := range Reasons() {
		out = append(out, ReasonResponse{ID: string(r), Label: r.Label()})
	}
	return out
}

// PeriodResponse is the raw period as returned after check-in or check-out.
type PeriodResponse struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	CheckInTime     string  `json:"checkin_time"`
	CheckOutTime    *string `json:"checkout_time"`
	DurationSeconds *int64  `json:"duration_seconds"`
	ReasonID        *string `json:"reason_id"`
	ReasonLabel     *string `json:"reason_label"`
	Details         *string `json:"details"`
}

func ToResponse(p WorkPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:              p.ID,
		Date:            p.Date.String(),
		CheckInTime:     p.CheckIn.String(),
		DurationSeconds: p.DurationSeconds,
		Details:         p.Details,
	}
	if p.CheckOut != nil {
		out := p.CheckOut.String()
		resp.CheckOutTime = &out
	}
	if p.Reason != nil {
		id, label := string(*p.Reason), p.Reason.Label()
		resp.ReasonID = &id
		resp.ReasonLabel = &label
	}
	return resp
}

type StatusResponse struct {
	Working           bool                  `json:"working"`
	Period            *PeriodResponse       `json:"period"`
	ElapsedSeconds    int64                 `json:"elapsed_seconds"`
	Clock             string                `json:"clock"`
	Classification    *shift.Classification `json:"classification,omitempty"`
	TodayTotalSeconds int64                 `json:"today_total_seconds"`
	TodayTotal        string                `json:"today_total"`
	TargetMinutes     int64                 `json:"target_minutes"`
}

type ShiftConfigResponse struct {
	TargetMinutes    int64            `json:"target_minutes"`
	TargetSeconds    int64            `json:"target_seconds"`
	TargetLabel      string           `json:"target_label"`
	ToleranceSeconds int64            `json:"tolerance_seconds"`
	Reasons          []ReasonResponse `json:"reasons"`
}
