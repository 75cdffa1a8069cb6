package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/employee"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/backend"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// backendReasonLabels maps the backend's display labels back to reason codes, for
// endpoints that only return the label.
var backendReasonLabels = map[string]workperiod.Reason{
	"fim de expediente": workperiod.ReasonEndShift,
	"início de almoço":  workperiod.ReasonLunch,
	"inicio de almoço":  workperiod.ReasonLunch,
	"pausa/intervalo":   workperiod.ReasonBreak,
	"reunião":           workperiod.ReasonMeeting,
	"consulta médica":   workperiod.ReasonMedical,
	"outros":            workperiod.ReasonOther,
}

type workRecordDTO struct {
	ID              backend.ID `json:"id"`
	Date            string     `json:"date"`
	CheckInTime     string     `json:"checkin_time"`
	CheckOutTime    *string    `json:"checkout_time"`
	Duration        *string    `json:"duration"`
	DurationSeconds *int64     `json:"duration_seconds"`
	ReasonID        *string    `json:"reason_id"`
	ReasonLabel     *string    `json:"reason_label"`
	Details         *string    `json:"details"`
}

type pageDTO struct {
	Content       []workRecordDTO `json:"content"`
	TotalElements int64           `json:"totalElements"`
}

func (d workRecordDTO) toEntity(employeeID string) (workperiod.WorkPeriod, error) {
	p := workperiod.WorkPeriod{
		ID:         d.ID.String(),
		EmployeeID: employeeID,
		Details:    d.Details,
	}

	if strings.Contains(d.CheckInTime, "T") {
		date, tod, err := timecalc.ParseLocalDateTime(d.CheckInTime)
		if err != nil {
			return p, fmt.Errorf("record %s: %w", d.ID, err)
		}
		p.Date, p.CheckIn = date, tod
	} else {
		date, err := timecalc.ParseDate(d.Date)
		if err != nil {
			return p, fmt.Errorf("record %s: %w", d.ID, err)
		}
		tod, err := timecalc.ParseTimeOfDay(d.CheckInTime)
		if err != nil {
			return p, fmt.Errorf("record %s: %w", d.ID, err)
		}
		p.Date, p.CheckIn = date, tod
	}

	if d.CheckOutTime != nil && *d.CheckOutTime != "" {
		raw := *d.CheckOutTime
		if i := strings.IndexByte(raw, 'T'); i >= 0 {
			raw = raw[i+1:]
		}
		tod, err := timecalc.ParseTimeOfDay(raw)
		if err != nil {
			return p, fmt.Errorf("record %s: %w", d.ID, err)
		}
		p.CheckOut = &tod
		p.DurationSeconds = d.closedDuration()
	}

	p.Reason = d.reason()
	return p, nil
}

// closedDuration prefers duration_seconds and falls back to the HH:MM:SS string.
func (d workRecordDTO) closedDuration() *int64 {
	if d.DurationSeconds != nil {
		v := *d.DurationSeconds
		return &v
	}
	if d.Duration != nil {
		if v, err := timecalc.ParseClock(*d.Duration); err == nil {
			return &v
		}
	}
	return nil
}

func (d workRecordDTO) reason() *workperiod.Reason {
	if d.ReasonID != nil && *d.ReasonID != "" {
		r := workperiod.Reason(strings.ToLower(strings.TrimSpace(*d.ReasonID)))
		return &r
	}
	if d.ReasonLabel != nil {
		if r, ok := backendReasonLabels[strings.ToLower(strings.TrimSpace(*d.ReasonLabel))]; ok {
			return &r
		}
	}
	return nil
}

type checkOutBody struct {
	ReasonID string `json:"reason_id"`
	Details  string `json:"details,omitempty"`
}

type employeeDTO struct {
	ID              backend.ID `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	WorkStartTime   *string    `json:"workStartTime"`
	WorkEndTime     *string    `json:"workEndTime"`
	WorkStartTimeSC *string    `json:"work_start_time"`
	WorkEndTimeSC   *string    `json:"work_end_time"`
}

func (d employeeDTO) toEntity() employee.Employee {
	e := employee.Employee{
		ID:    d.ID.String(),
		Name:  d.Name,
		Email: d.Email,
		Role:  roleOf(d.Role),
	}
	e.WorkStartTime = parseOptionalTime(firstNonEmpty(d.WorkStartTime, d.WorkStartTimeSC))
	e.WorkEndTime = parseOptionalTime(firstNonEmpty(d.WorkEndTime, d.WorkEndTimeSC))
	return e
}

type scheduleBody struct {
	WorkStartTime string `json:"workStartTime"`
	WorkEndTime   string `json:"workEndTime"`
}

type teamStatusDTO struct {
	ID              backend.ID `json:"id"`
	EmployeeID      backend.ID `json:"employeeId"`
	Name            string     `json:"name"`
	StartTime       string     `json:"startTime"`
	EndTime         *string    `json:"endTime"`
	DurationSeconds *int64     `json:"durationSeconds"`
	ReasonID        *string    `json:"reasonId"`
}

func (d teamStatusDTO) toEntity() (employee.LatestRecord, error) {
	start, err := parseInstant(d.StartTime)
	if err != nil {
		return employee.LatestRecord{}, fmt.Errorf("team record %s: %w", d.ID, err)
	}
	rec := employee.LatestRecord{
		PeriodID:        d.ID.String(),
		EmployeeID:      d.EmployeeID.String(),
		Name:            d.Name,
		StartTime:       start,
		DurationSeconds: d.DurationSeconds,
	}
	if d.EndTime != nil && *d.EndTime != "" {
		end, err := parseInstant(*d.EndTime)
		if err != nil {
			return employee.LatestRecord{}, fmt.Errorf("team record %s: %w", d.ID, err)
		}
		rec.EndTime = &end
	}
	if d.ReasonID != nil && *d.ReasonID != "" {
		r := workperiod.Reason(strings.ToLower(*d.ReasonID))
		rec.Reason = &r
	}
	return rec, nil
}

type rankingDTO struct {
	Name       string  `json:"name"`
	TotalHours float64 `json:"totalHours"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginDTO struct {
	ID    backend.ID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
	Token string     `json:"token"`
}

// parseInstant reads a zone-less backend timestamp as a UTC wall clock.
func parseInstant(s string) (time.Time, error) {
	date, tod, err := timecalc.ParseLocalDateTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return timecalc.Instant(date, tod), nil
}

func parseOptionalTime(s string) *timecalc.TimeOfDay {
	if s == "" {
		return nil
	}
	tod, err := timecalc.ParseTimeOfDay(s)
	if err != nil {
		return nil
	}
	return &tod
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
