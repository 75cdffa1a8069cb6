package timecalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for negative durations and malformed date/time strings.
var ErrInvalidInput = errors.New("invalid time input")

const (
	DateLayout          = "2006-01-02"
	LocalDateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

// Time returns midnight of d in UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// SameMonth reports whether d and o share month and year.
func (d Date) SameMonth(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month
}

// TimeOfDay is a wall-clock time without date or zone.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS", with an optional fractional second.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidInput, s)
	}

	vals := [3]int{}
	for i, p := range parts {
		if len(p) != 2 {
			return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidInput, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidInput, s)
		}
		vals[i] = n
	}

	tod := TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if tod.Hour > 23 || tod.Minute > 59 || tod.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidInput, s)
	}
	return tod, nil
}

// TimeOfDayOf returns the wall-clock part of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Short renders "HH:MM".
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Seconds returns seconds since midnight.
func (t TimeOfDay) Seconds() int64 {
	return int64(t.Hour*3600 + t.Minute*60 + t.Second)
}

// ParseLocalDateTime parses a zone-less "YYYY-MM-DDTHH:MM:SS" timestamp (fractional
// seconds allowed) into its date and time-of-day parts.
func ParseLocalDateTime(s string) (Date, TimeOfDay, error) {
	t, err := time.Parse(LocalDateTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, TimeOfDay{}, fmt.Errorf("%w: datetime %q", ErrInvalidInput, s)
	}
	return DateOf(t), TimeOfDayOf(t), nil
}

// Instant combines date and time-of-day as a UTC wall clock. The backend stores both
// columns without a zone; reading them as UTC keeps the result independent of the
// host's local zone.
func Instant(date Date, tod TimeOfDay) time.Time {
	return time.Date(date.Year, date.Month, date.Day, tod.Hour, tod.Minute, tod.Second, 0, time.UTC)
}

// ElapsedSecondsSince returns the whole seconds between date+tod and now.
func ElapsedSecondsSince(date Date, tod TimeOfDay) int64 {
	return ElapsedSecondsAt(date, tod, time.Now())
}

// ElapsedSecondsAt is ElapsedSecondsSince evaluated at now. Clock skew that would make
// the result negative is clamped to zero.
func ElapsedSecondsAt(date Date, tod TimeOfDay, now time.Time) int64 {
	diff := now.Sub(Instant(date, tod))
	if diff <= 0 {
		return 0
	}
	return int64(diff / time.Second)
}

// FormatSecondsToClock renders "HH:MM:SS". Hours are not capped.
func FormatSecondsToClock(totalSeconds int64) (string, error) {
	if totalSeconds < 0 {
		return "", fmt.Errorf("%w: negative seconds %d", ErrInvalidInput, totalSeconds)
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}

// MustClock is FormatSecondsToClock for values already known to be non-negative.
// Negative input is clamped to zero.
func MustClock(totalSeconds int64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	out, _ := FormatSecondsToClock(totalSeconds)
	return out
}

// ParseClock is the inverse of FormatSecondsToClock.
func ParseClock(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidInput, s)
	}

	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || h < 0 || len(parts[0]) < 2 {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidInput, s)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidInput, s)
	}
	sec, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || sec < 0 || sec > 59 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidInput, s)
	}
	return h*3600 + m*60 + sec, nil
}

// FormatMinutesToLabel renders "Xh Ym", "Xh" or "Ym".
func FormatMinutesToLabel(totalMinutes int64) (string, error) {
	if totalMinutes < 0 {
		return "", fmt.Errorf("%w: negative minutes %d", ErrInvalidInput, totalMinutes)
	}
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes), nil
	case hours > 0:
		return fmt.Sprintf("%dh", hours), nil
	default:
		return fmt.Sprintf("%dm", minutes), nil
	}
}

// FormatSignedBalance renders current-target as "+HH:MM:SS" or "-HH:MM:SS".
// A zero difference is positive.
func FormatSignedBalance(currentSeconds, targetSeconds int64) string {
	diff := currentSeconds - targetSeconds
	sign := "+"
	if diff < 0 {
		sign = "-"
		diff = -diff
	}
	return sign + MustClock(diff)
}

// HoursOneDecimal converts seconds to hours rounded half-up to one decimal place.
func HoursOneDecimal(seconds int64) float64 {
	return hoursRounded(seconds, 1)
}

// HoursTwoDecimals converts seconds to hours rounded to two decimal places.
func HoursTwoDecimals(seconds int64) float64 {
	return hoursRounded(seconds, 2)
}

func hoursRounded(seconds int64, places int32) float64 {
	h, _ := decimal.NewFromInt(seconds).
		Div(decimal.NewFromInt(3600)).
		Round(places).
		Float64()
	return h
}
