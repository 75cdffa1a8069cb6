package workperiod

import (
	"fmt"
	"time"

	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// Reason tags why a period was closed.
type Reason string

const (
	ReasonEndShift Reason = "end_shift"
	ReasonLunch    Reason = "lunch_start"
	ReasonBreak    Reason = "break_start"
	ReasonMeeting  Reason = "meeting_start"
	ReasonMedical  Reason = "medical"
	ReasonOther    Reason = "other"
)

var reasonLabels = map[Reason]string{
	ReasonEndShift: "End of shift",
	ReasonLunch:    "Lunch",
	ReasonBreak:    "Break",
	ReasonMeeting:  "Meeting",
	ReasonMedical:  "Medical appointment",
	ReasonOther:    "Other",
}

// Reasons lists every reason in display order.
func Reasons() []Reason {
	return []Reason{ReasonEndShift, ReasonLunch, ReasonBreak, ReasonMeeting, ReasonMedical, ReasonOther}
}

func (r Reason) IsValid() bool {
	_, ok := reasonLabels[r]
	return ok
}

// Label returns the human label, or the raw code for unknown reasons.
func (r Reason) Label() string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}
	return string(r)
}

// WorkPeriod is one check-in/check-out cycle as recorded by the backend.
// It is read-only on this side.
type WorkPeriod struct {
	ID              string
	EmployeeID      string
	Date            timecalc.Date
	CheckIn         timecalc.TimeOfDay
	CheckOut        *timecalc.TimeOfDay
	DurationSeconds *int64
	Reason          *Reason
	Details         *string
}

func (p WorkPeriod) IsOpen() bool {
	return p.CheckOut == nil
}

// IsEndShift reports whether the period was closed as a normal end of shift.
func (p WorkPeriod) IsEndShift() bool {
	return p.Reason != nil && *p.Reason == ReasonEndShift
}

// ClosedDuration returns the recorded duration of a closed period. ok is false for
// open periods and for closed periods missing a usable duration.
func (p WorkPeriod) ClosedDuration() (seconds int64, ok bool) {
	if p.IsOpen() || p.DurationSeconds == nil || *p.DurationSeconds < 0 {
		return 0, false
	}
	return *p.DurationSeconds, true
}

// StartedAt is the check-in instant under the UTC wall-clock contract.
func (p WorkPeriod) StartedAt() time.Time {
	return timecalc.Instant(p.Date, p.CheckIn)
}

// EndedAt is the checkout instant. A checkout earlier than the check-in on the
// wall clock is read as falling on the following day.
func (p WorkPeriod) EndedAt() (time.Time, bool) {
	if p.CheckOut == nil {
		return time.Time{}, false
	}
	end := timecalc.Instant(p.Date, *p.CheckOut)
	if p.CheckOut.Seconds() < p.CheckIn.Seconds() {
		end = end.AddDate(0, 0, 1)
	}
	return end, true
}

// Anomaly describes a broken checkout/duration pairing, or nil when consistent.
func (p WorkPeriod) Anomaly() error {
	switch {
	case p.CheckOut != nil && p.DurationSeconds == nil:
		return fmt.Errorf("%w: period %s closed without duration", ErrInconsistentPeriod, p.ID)
	case p.CheckOut != nil && *p.DurationSeconds < 0:
		return fmt.Errorf("%w: period %s has negative duration", ErrInconsistentPeriod, p.ID)
	case p.CheckOut == nil && p.DurationSeconds != nil:
		return fmt.Errorf("%w: period %s has duration but no checkout", ErrInconsistentPeriod, p.ID)
	}
	return nil
}

// ReasonLabel returns the label of the period's reason, or "" when none.
func (p WorkPeriod) ReasonLabel() string {
	if p.Reason == nil {
		return ""
	}
	return p.Reason.Label()
}

// Filter narrows a history listing.
type Filter struct {
	Date      *timecalc.Date
	StartDate *timecalc.Date
	EndDate   *timecalc.Date
	Page      int
	Limit     int
}
