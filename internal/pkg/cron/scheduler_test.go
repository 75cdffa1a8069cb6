package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	calls atomic.Int32
}

func (f *fakePurger) PurgeExpired(time.Time) int {
	f.calls.Add(1)
	return 2
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler()
	err := s.AddJob("bad", 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	purger := &fakePurger{}
	require.NoError(t, s.AddJob("purge", time.Hour, PurgeRevokedTokens(purger)))
	require.NoError(t, s.AddJob("failing", time.Hour, func(context.Context) error { return errors.New("boom") }))

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), purger.calls.Load())
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	purger := &fakePurger{}
	require.NoError(t, s.AddJob("purge", time.Hour, PurgeRevokedTokens(purger)))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return purger.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
}
