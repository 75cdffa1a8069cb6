package shift

import (
	"testing"

	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
	"github.com/stretchr/testify/require"
)

func closedPeriod(t *testing.T, id, date, in, out string, seconds int64, reason workperiod.Reason) workperiod.WorkPeriod {
	t.Helper()
	p := openPeriod(t, id, date, in)
	checkOut, err := timecalc.ParseTimeOfDay(out)
	require.NoError(t, err)
	p.CheckOut = &checkOut
	p.DurationSeconds = &seconds
	p.Reason = &reason
	return p
}

func openPeriod(t *testing.T, id, date, in string) workperiod.WorkPeriod {
	t.Helper()
	d, err := timecalc.ParseDate(date)
	require.NoError(t, err)
	checkIn, err := timecalc.ParseTimeOfDay(in)
	require.NoError(t, err)
	return workperiod.WorkPeriod{ID: id, EmployeeID: "7", Date: d, CheckIn: checkIn}
}

func mustDate(t *testing.T, s string) timecalc.Date {
	t.Helper()
	d, err := timecalc.ParseDate(s)
	require.NoError(t, err)
	return d
}
