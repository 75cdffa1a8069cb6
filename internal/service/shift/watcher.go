package shift

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/moura-tracker/timeclock/internal/domain/shift"
	"github.com/moura-tracker/timeclock/internal/domain/workperiod"
	"github.com/moura-tracker/timeclock/internal/pkg/timecalc"
)

const DefaultTickInterval = time.Second

// Emitter receives each tick. Returning an error ends the watch.
type Emitter func(shift.Tick) error

// Watcher re-evaluates an open period on a fixed interval. Each tick derives the
// elapsed time from the recorded start, so missed ticks never accumulate drift.
type Watcher struct {
	classifier *Classifier
	interval   time.Duration
	now        func() time.Time
}

type WatcherOption func(*Watcher)

// WithClock replaces the wall clock used to stamp ticks.
func WithClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) {
		w.now = now
	}
}

func NewWatcher(classifier *Classifier, interval time.Duration, opts ...WatcherOption) *Watcher {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	w := &Watcher{
		classifier: classifier,
		interval:   interval,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Tick evaluates period at now. prevElapsed feeds milestone detection; pass a
// negative value for the first tick of a watch so no milestone is reported.
func (w *Watcher) Tick(period workperiod.WorkPeriod, prevElapsed int64, now time.Time) shift.Tick {
	elapsed := timecalc.ElapsedSecondsAt(period.Date, period.CheckIn, now)
	classification, _ := w.classifier.ClassifyAt(period, now)

	tick := shift.Tick{
		PeriodID:       period.ID,
		ElapsedSeconds: elapsed,
		Clock:          timecalc.MustClock(elapsed),
		Classification: classification,
		At:             now,
	}
	if prevElapsed >= 0 {
		tick.Milestone = w.classifier.Milestone(prevElapsed, elapsed)
	}
	return tick
}

// Watch emits a tick immediately and then once per interval until stop fires
// (the period was closed), ctx is done (the viewer went away) or emit fails.
// Stop and cancellation return nil and ctx.Err() respectively.
func (w *Watcher) Watch(ctx context.Context, period workperiod.WorkPeriod, stop <-chan struct{}, emit Emitter) error {
	if !period.IsOpen() {
		return shift.ErrPeriodClosed
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	prev := int64(-1)
	send := func() error {
		tick := w.Tick(period, prev, w.now())
		prev = tick.ElapsedSeconds
		if err := emit(tick); err != nil {
			return fmt.Errorf("%w: %w", shift.ErrEmitFailed, err)
		}
		return nil
	}

	if err := send(); err != nil {
		return err
	}

	for {
		select {
		case <-stop:
			slog.Debug("Shift watch stopped", "period_id", period.ID)
			return nil
		case <-ctx.Done():
			slog.Debug("Shift watch cancelled", "period_id", period.ID)
			return ctx.Err()
		case <-ticker.C:
			// A close or cancellation that raced the tick must not produce one more emission.
			select {
			case <-stop:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := send(); err != nil {
				return err
			}
		}
	}
}
