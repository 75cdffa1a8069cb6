package shift

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

// Classifier judges work periods against the configured daily target.
type Classifier struct {
	cfg shift.Config
	now func() time.Time
}

func NewClassifier(cfg shift.Config) *Classifier {
	return &Classifier{cfg: cfg, now: time.Now}
}

func (c *Classifier) Config() shift.Config {
	return c.cfg
}

// Classify evaluates p at the current instant. The bool is false when the period
// carries no badge: closed for a reason other than end of shift, or missing the
// data needed to judge it.
func (c *Classifier) Classify(p workperiod.WorkPeriod) (shift.Classification, bool) {
	return c.ClassifyAt(p, c.now())
}

func (c *Classifier) ClassifyAt(p workperiod.WorkPeriod, now time.Time) (shift.Classification, bool) {
	if p.IsOpen() {
		return c.inProgress(timecalc.ElapsedSecondsAt(p.Date, p.CheckIn, now)), true
	}

	duration, ok := p.ClosedDuration()
	if !ok || !p.IsEndShift() {
		return shift.Classification{}, false
	}
	return c.Judge(duration), true
}

// ClassifyDuration is the bare tolerance-band decision for a closed total.
func (c *Classifier) ClassifyDuration(seconds int64) shift.Status {
	diff := seconds - c.cfg.TargetSeconds()
	switch {
	case diff > shift.ToleranceSeconds:
		return shift.StatusOvertime
	case diff < -shift.ToleranceSeconds:
		return shift.StatusIncomplete
	default:
		return shift.StatusOnTarget
	}
}

// Judge builds the badge for a closed total.
func (c *Classifier) Judge(seconds int64) shift.Classification {
	balance := timecalc.FormatSignedBalance(seconds, c.cfg.TargetSeconds())
	status := c.ClassifyDuration(seconds)

	out := shift.Classification{
		Status:         status,
		Balance:        balance,
		ElapsedSeconds: seconds,
	}
	switch status {
	case shift.StatusOvertime:
		out.Label = "Overtime " + balance
	case shift.StatusIncomplete:
		out.Label = "Incomplete " + balance
	default:
		out.Label = "On target"
	}
	return out
}

func (c *Classifier) inProgress(elapsed int64) shift.Classification {
	return shift.Classification{
		Status:         shift.StatusInProgress,
		Label:          "In progress",
		ElapsedSeconds: elapsed,
	}
}

// ClassifyAll badges a whole collection keyed by period ID. Open periods are in
// progress. Per date, only the last closed end-of-shift period is judged, and it is
// judged on the date's total rather than its own duration. Every other period is
// absent from the result.
func (c *Classifier) ClassifyAll(periods []workperiod.WorkPeriod) map[string]shift.Classification {
	return c.ClassifyAllAt(periods, c.now())
}

func (c *Classifier) ClassifyAllAt(periods []workperiod.WorkPeriod, now time.Time) map[string]shift.Classification {
	out := make(map[string]shift.Classification)
	totals := DailyTotals(periods)
	last := make(map[string]workperiod.WorkPeriod)

	for _, p := range periods {
		if p.IsOpen() {
			out[p.ID] = c.inProgress(timecalc.ElapsedSecondsAt(p.Date, p.CheckIn, now))
			continue
		}
		if _, ok := p.ClosedDuration(); !ok || !p.IsEndShift() {
			continue
		}
		key := p.Date.String()
		if prev, seen := last[key]; !seen || endsAfter(p, prev) {
			last[key] = p
		}
	}

	for date, p := range last {
		out[p.ID] = c.Judge(totals[date])
	}
	return out
}

// endsAfter orders closed periods by checkout, then check-in, then ID.
func endsAfter(a, b workperiod.WorkPeriod) bool {
	aEnd, _ := a.EndedAt()
	bEnd, _ := b.EndedAt()
	if !aEnd.Equal(bEnd) {
		return aEnd.After(bEnd)
	}
	if a.CheckIn != b.CheckIn {
		return a.CheckIn.Seconds() > b.CheckIn.Seconds()
	}
	return compareIDs(a.ID, b.ID) > 0
}

// compareIDs compares numerically when both IDs are integers.
func compareIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// Milestone reports the target point crossed moving from prevElapsed to elapsed.
// Reaching the target wins over half target when both are crossed at once.
func (c *Classifier) Milestone(prevElapsed, elapsed int64) shift.Milestone {
	target := c.cfg.TargetSeconds()
	half := target / 2

	switch {
	case prevElapsed < target && elapsed >= target:
		return shift.MilestoneTargetReached
	case prevElapsed < half && elapsed >= half:
		return shift.MilestoneHalfTarget
	default:
		return shift.MilestoneNone
	}
}

// SortNewestFirst orders periods by date, then check-in, descending.
func SortNewestFirst(periods []workperiod.WorkPeriod) {
	sort.SliceStable(periods, func(i, j int) bool {
		a, b := periods[i].StartedAt(), periods[j].StartedAt()
		if !a.Equal(b) {
			return a.After(b)
		}
		return compareIDs(periods[i].ID, periods[j].ID) > 0
	})
}
