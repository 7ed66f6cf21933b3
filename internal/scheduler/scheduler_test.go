package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckpointer struct {
	calls atomic.Int64
	err   error
}

func (f *fakeCheckpointer) Checkpoint(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

func testScheduler() *Scheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewScheduler(log)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := testScheduler()
	assert.False(t, s.IsRunning())

	err := s.ScheduleCheckpoint("@every 1h", &fakeCheckpointer{})
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	// Starting twice is an error.
	assert.Error(t, s.Start())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stopping an idle scheduler is a no-op.
	assert.NoError(t, s.Stop())
}

func TestSchedulerRejectsStartWithNoJobs(t *testing.T) {
	s := testScheduler()
	assert.Error(t, s.Start())
}

func TestSchedulerRejectsSchedulingWhileRunning(t *testing.T) {
	s := testScheduler()
	require.NoError(t, s.ScheduleCheckpoint("@every 1h", &fakeCheckpointer{}))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.ScheduleCheckpoint("@every 1h", &fakeCheckpointer{}))
	assert.Error(t, s.ScheduleRollover("@daily", func(ctx context.Context) error { return nil }))
}

func TestScheduleCheckpointValidation(t *testing.T) {
	s := testScheduler()

	err := s.ScheduleCheckpoint("@every 1h")
	assert.Error(t, err, "at least one checkpoint target is required")

	err = s.ScheduleCheckpoint("not a cron expression", &fakeCheckpointer{})
	assert.Error(t, err)
}

func TestScheduleRolloverValidation(t *testing.T) {
	s := testScheduler()

	err := s.ScheduleRollover("61 * * * *", func(ctx context.Context) error { return nil })
	assert.Error(t, err)

	err = s.ScheduleRollover("0 0 * * *", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestSchedulerNextRunAndEntries(t *testing.T) {
	s := testScheduler()

	assert.True(t, s.NextRun().IsZero(), "no next run before start")

	require.NoError(t, s.ScheduleCheckpoint("@every 1h", &fakeCheckpointer{}))
	require.NoError(t, s.ScheduleRollover("0 0 * * *", func(ctx context.Context) error { return nil }))
	require.NoError(t, s.Start())
	defer s.Stop()

	next := s.NextRun()
	assert.False(t, next.IsZero())
	assert.True(t, next.After(time.Now().Add(-time.Second)))
	assert.Len(t, s.Entries(), 2)
}

func TestScheduledCheckpointRunsAllTargets(t *testing.T) {
	s := testScheduler()

	healthy := &fakeCheckpointer{}
	broken := &fakeCheckpointer{err: assert.AnError}

	// A second-granularity schedule so the job fires during the test.
	require.NoError(t, s.ScheduleCheckpoint("@every 1s", broken, healthy))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return healthy.calls.Load() >= 1 && broken.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond, "one target failing must not stop the others")
}
