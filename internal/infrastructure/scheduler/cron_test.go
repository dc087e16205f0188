package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(time.Second, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	require.NoError(t, s.Start(context.Background(), func(time.Time) { t.Error("second start must not run") }))

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond, "first pass runs without waiting for a tick")
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(1200 * time.Millisecond)
	require.Equal(t, after, runs.Load())
	require.NoError(t, s.Stop(context.Background()))
}

func TestIntervalSchedulerSkipsTicksWhilePassRuns(t *testing.T) {
	t.Parallel()

	var runs, running, overlapped atomic.Int32
	release := make(chan struct{})
	s := NewIntervalScheduler(time.Second, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		if running.Add(1) > 1 {
			overlapped.Add(1)
		}
		defer running.Add(-1)
		if runs.Add(1) == 1 {
			<-release
		}
	}))

	time.Sleep(2500 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load(), "ticks during a running pass are skipped")
	close(release)

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	require.Zero(t, overlapped.Load())
}

func TestStopWaitsForRunningPass(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var finished atomic.Bool
	s := NewIntervalScheduler(time.Hour, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	}))

	<-started
	require.NoError(t, s.Stop(context.Background()))
	require.True(t, finished.Load())
}

func TestStopHonoursDeadline(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	s := NewIntervalScheduler(time.Hour, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		close(started)
		<-release
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
	close(release)
}

func TestSchedulerRecoversPanickingPass(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(time.Second, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		if runs.Add(1) == 1 {
			panic("pass exploded")
		}
	}))

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestSchedulerRejectsBadSchedules(t *testing.T) {
	t.Parallel()

	err := NewIntervalScheduler(0, nil).Start(context.Background(), func(time.Time) {})
	require.ErrorIs(t, err, ErrInvalidInterval)

	err = NewCronScheduler("every tuesday", nil).Start(context.Background(), func(time.Time) {})
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestSchedulerStopsTickingWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	s := NewIntervalScheduler(time.Second, nil)
	require.NoError(t, s.Start(ctx, func(time.Time) { runs.Add(1) }))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())
	require.NoError(t, s.Stop(context.Background()))
}
