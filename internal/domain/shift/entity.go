package shift

import "time"

const (
	DefaultTargetMinutes int64 = 480

	// ToleranceSeconds is the band around the target, inclusive on both sides,
	// inside which a closed shift counts as on target.
	ToleranceSeconds int64 = 300
)

// Config holds the daily target. It is built once at startup and never changed.
type Config struct {
	targetMinutes int64
}

// NewConfig builds a Config, falling back to the default for non-positive targets.
func NewConfig(targetMinutes int64) Config {
	if targetMinutes <= 0 {
		targetMinutes = DefaultTargetMinutes
	}
	return Config{targetMinutes: targetMinutes}
}

func DefaultConfig() Config {
	return NewConfig(DefaultTargetMinutes)
}

func (c Config) TargetMinutes() int64 {
	if c.targetMinutes <= 0 {
		return DefaultTargetMinutes
	}
	return c.targetMinutes
}

func (c Config) TargetSeconds() int64 {
	return c.TargetMinutes() * 60
}

// Status is the derived state of a work period.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusOnTarget   Status = "on_target"
	StatusOvertime   Status = "overtime"
	StatusIncomplete Status = "incomplete"
)

// Classification is a status badge. Balance is set for judged closed shifts only.
type Classification struct {
	Status         Status `json:"status"`
	Label          string `json:"label"`
	Balance        string `json:"balance,omitempty"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
}

// Milestone marks the live timer crossing a notable point of the target.
type Milestone string

const (
	MilestoneNone          Milestone = ""
	MilestoneHalfTarget    Milestone = "half_target"
	MilestoneTargetReached Milestone = "target_reached"
)

// Tick is one re-evaluation of an open period.
type Tick struct {
	PeriodID       string         `json:"period_id"`
	ElapsedSeconds int64          `json:"elapsed_seconds"`
	Clock          string         `json:"clock"`
	Classification Classification `json:"classification"`
	Milestone      Milestone      `json:"milestone,omitempty"`
	At             time.Time      `json:"at"`
}

type WeeklyChart struct {
	Dates      []string  `json:"dates"`
	Categories []string  `json:"categories"`
	DayNames   []string  `json:"day_names"`
	Series     []float64 `json:"series"`
}

type MonthlyStats struct {
	Month             string `json:"month"`
	TotalHours        int64  `json:"total_hours"`
	TotalSeconds      int64  `json:"total_seconds"`
	TotalLabel        string `json:"total_label"`
	WorkedDayCount    int    `json:"worked_day_count"`
	TargetSeconds     int64  `json:"target_seconds"`
	BalanceLabel      string `json:"balance_label"`
	IsPositiveBalance bool   `json:"is_positive_balance"`
}
