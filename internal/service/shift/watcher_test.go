package shift

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClock returns the given instants in order, repeating the last one.
func scriptedClock(instants ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := instants[i]
		if i < len(instants)-1 {
			i++
		}
		return t
	}
}

func at(hh, mm, ss int) time.Time {
	return time.Date(2026, 1, 15, hh, mm, ss, 0, time.UTC)
}

func TestWatcher_RecomputesFromStartEveryTick(t *testing.T) {
	clock := scriptedClock(at(8, 0, 10), at(8, 5, 0), at(8, 5, 1))
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), time.Millisecond, WithClock(clock))
	period := openPeriod(t, "1", "2026-01-15", "08:00:00")

	stop := make(chan struct{})
	var ticks []shift.Tick
	err := w.Watch(context.Background(), period, stop, func(tick shift.Tick) error {
		ticks = append(ticks, tick)
		if len(ticks) == 3 {
			close(stop)
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, ticks, 3)
	assert.Equal(t, int64(10), ticks[0].ElapsedSeconds)
	assert.Equal(t, "00:00:10", ticks[0].Clock)
	// A gap between ticks shows up as a jump, not as drift.
	assert.Equal(t, int64(300), ticks[1].ElapsedSeconds)
	assert.Equal(t, int64(301), ticks[2].ElapsedSeconds)
	for _, tick := range ticks {
		assert.Equal(t, "1", tick.PeriodID)
		assert.Equal(t, shift.StatusInProgress, tick.Classification.Status)
	}
}

func TestWatcher_Milestones(t *testing.T) {
	clock := scriptedClock(at(8, 0, 20), at(8, 0, 31), at(8, 0, 40), at(8, 1, 5))
	w := NewWatcher(NewClassifier(shift.NewConfig(1)), time.Millisecond, WithClock(clock))
	period := openPeriod(t, "1", "2026-01-15", "08:00:00")

	stop := make(chan struct{})
	var got []shift.Milestone
	err := w.Watch(context.Background(), period, stop, func(tick shift.Tick) error {
		got = append(got, tick.Milestone)
		if len(got) == 4 {
			close(stop)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []shift.Milestone{
		shift.MilestoneNone,
		shift.MilestoneHalfTarget,
		shift.MilestoneNone,
		shift.MilestoneTargetReached,
	}, got)
}

func TestWatcher_FirstTickNeverReportsMilestone(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.NewConfig(1)), time.Hour, WithClock(scriptedClock(at(9, 0, 0))))
	tick := w.Tick(openPeriod(t, "1", "2026-01-15", "08:00:00"), -1, at(9, 0, 0))
	assert.Equal(t, shift.MilestoneNone, tick.Milestone)
	assert.Equal(t, int64(3600), tick.ElapsedSeconds)
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), time.Millisecond)
	period := openPeriod(t, "1", "2026-01-15", "08:00:00")

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	err := w.Watch(ctx, period, nil, func(shift.Tick) error {
		count++
		if count == 2 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, count, 2)
}

func TestWatcher_CancelRacingTickEmitsNothingMore(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), time.Millisecond)
	period := openPeriod(t, "1", "2026-01-15", "08:00:00")

	// Both the ticker and ctx are ready when the loop resumes, so the select may
	// take either branch. Neither may lead to a second emission.
	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		count := 0
		err := w.Watch(ctx, period, nil, func(shift.Tick) error {
			count++
			cancel()
			time.Sleep(5 * time.Millisecond)
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, count)
	}
}

func TestWatcher_StopsWhenEmitterFails(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), time.Millisecond)
	period := openPeriod(t, "1", "2026-01-15", "08:00:00")
	boom := errors.New("client went away")

	count := 0
	err := w.Watch(context.Background(), period, nil, func(shift.Tick) error {
		count++
		return boom
	})

	assert.ErrorIs(t, err, shift.ErrEmitFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count)
}

func TestWatcher_ClosedPeriodIsNotWatched(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), time.Millisecond)
	period := closedPeriod(t, "1", "2026-01-15", "08:00:00", "16:00:00", 28800, workperiod.ReasonEndShift)

	called := false
	err := w.Watch(context.Background(), period, nil, func(shift.Tick) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, shift.ErrPeriodClosed)
	assert.False(t, called)
}

func TestWatcher_StopBeforeFirstIntervalEmitsOnce(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), time.Hour)
	period := openPeriod(t, "1", "2026-01-15", "08:00:00")

	stop := make(chan struct{})
	close(stop)
	count := 0
	err := w.Watch(context.Background(), period, stop, func(shift.Tick) error {
		count++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewWatcher_DefaultsInterval(t *testing.T) {
	w := NewWatcher(NewClassifier(shift.DefaultConfig()), 0)
	assert.Equal(t, DefaultTickInterval, w.interval)
}
