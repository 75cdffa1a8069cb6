package shift

import (
	"log/slog"

	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

const weekLength = 7

// Engine rolls work periods up into daily, weekly and monthly aggregates.
// Every method is a pure function of its arguments and never mutates them.
type Engine struct {
	cfg shift.Config
}

func NewEngine(cfg shift.Config) *Engine {
	return &Engine{cfg: cfg}
}

// DailyTotals sums closed durations per "YYYY-MM-DD". Open periods contribute
// nothing. Closed periods without a usable duration are skipped and logged.
func DailyTotals(periods []workperiod.WorkPeriod) map[string]int64 {
	totals := make(map[string]int64)
	for _, p := range periods {
		if p.IsOpen() {
			continue
		}
		seconds, ok := p.ClosedDuration()
		if !ok {
			slog.Warn("Skipping closed work period without usable duration",
				"period_id", p.ID,
				"employee_id", p.EmployeeID,
				"date", p.Date.String(),
			)
			continue
		}
		totals[p.Date.String()] += seconds
	}
	return totals
}

func (e *Engine) DailyTotals(periods []workperiod.WorkPeriod) map[string]int64 {
	return DailyTotals(periods)
}

// TotalOn returns the closed total for a single date.
func (e *Engine) TotalOn(periods []workperiod.WorkPeriod, date timecalc.Date) int64 {
	return DailyTotals(periods)[date.String()]
}

// WeeklySeries returns seven daily totals in hours, oldest first, ending at today.
func (e *Engine) WeeklySeries(periods []workperiod.WorkPeriod, today timecalc.Date) []float64 {
	totals := DailyTotals(periods)
	series := make([]float64, weekLength)
	for i := range series {
		day := today.AddDays(i - (weekLength - 1))
		series[i] = timecalc.HoursOneDecimal(totals[day.String()])
	}
	return series
}

// WeeklyChart is WeeklySeries with the "dd/MM" categories and day names a chart needs.
func (e *Engine) WeeklyChart(periods []workperiod.WorkPeriod, today timecalc.Date) shift.WeeklyChart {
	chart := shift.WeeklyChart{
		Dates:      make([]string, weekLength),
		Categories: make([]string, weekLength),
		DayNames:   make([]string, weekLength),
		Series:     e.WeeklySeries(periods, today),
	}
	for i := 0; i < weekLength; i++ {
		day := today.AddDays(i - (weekLength - 1))
		t := day.Time()
		chart.Dates[i] = day.String()
		chart.Categories[i] = t.Format("02/01")
		chart.DayNames[i] = t.Format("Mon")
	}
	return chart
}

// MonthlyStats totals the periods of reference's month. The target scales with the
// number of distinct dates carrying any record, including dates whose only record
// is still open or has no usable duration; those add nothing to the total.
func (e *Engine) MonthlyStats(periods []workperiod.WorkPeriod, reference timecalc.Date) shift.MonthlyStats {
	inMonth := make([]workperiod.WorkPeriod, 0, len(periods))
	dates := make(map[string]struct{})
	for _, p := range periods {
		if p.Date.SameMonth(reference) {
			inMonth = append(inMonth, p)
			dates[p.Date.String()] = struct{}{}
		}
	}

	var total int64
	for _, seconds := range DailyTotals(inMonth) {
		total += seconds
	}
	target := int64(len(dates)) * e.cfg.TargetSeconds()
	label, _ := timecalc.FormatMinutesToLabel(total / 60)

	return shift.MonthlyStats{
		Month:             reference.Time().Format("2006-01"),
		TotalHours:        total / 3600,
		TotalSeconds:      total,
		TotalLabel:        label,
		WorkedDayCount:    len(dates),
		TargetSeconds:     target,
		BalanceLabel:      timecalc.FormatSignedBalance(total, target),
		IsPositiveBalance: total >= target,
	}
}
