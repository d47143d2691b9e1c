package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddValidatesJob(t *testing.T) {
	s := New()
	assert.Error(t, s.Add(Job{Name: "no run", Every: time.Second}))
	assert.Error(t, s.Add(Job{Name: "no interval", Run: func(context.Context) error { return nil }}))
	assert.Empty(t, s.Jobs())
}

func TestJobRunsOnEveryTick(t *testing.T) {
	var runs atomic.Int32
	s := New()
	require.NoError(t, s.Add(Job{
		Name:  "tick",
		Every: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRunOnStart(t *testing.T) {
	started := make(chan struct{}, 1)
	s := New()
	require.NoError(t, s.Add(Job{
		Name:       "boot",
		Every:      time.Hour,
		RunOnStart: true,
		Run: func(context.Context) error {
			started <- struct{}{}
			return nil
		},
	}))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestFailingJobsKeepRunning(t *testing.T) {
	var errs, panics atomic.Int32
	s := New()
	require.NoError(t, s.Add(Job{
		Name:  "fails",
		Every: 10 * time.Millisecond,
		Run: func(context.Context) error {
			errs.Add(1)
			return errors.New("boom")
		},
	}))
	require.NoError(t, s.Add(Job{
		Name:  "panics",
		Every: 10 * time.Millisecond,
		Run: func(context.Context) error {
			panics.Add(1)
			panic("boom")
		},
	}))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return errs.Load() >= 2 && panics.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStartAndAddWhileRunning(t *testing.T) {
	s := New()
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrRunning)
	assert.ErrorIs(t, s.Add(Job{Name: "late", Every: time.Second, Run: func(context.Context) error { return nil }}), ErrRunning)
	s.Stop()
	s.Stop()
}

func TestStopWaitsAndHaltsJobs(t *testing.T) {
	var runs atomic.Int32
	s := New()
	require.NoError(t, s.Add(Job{
		Name:  "tick",
		Every: 5 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runs.Load() > 0 }, time.Second, time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestContextCancelStopsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	s := New()
	require.NoError(t, s.Add(Job{
		Name:  "tick",
		Every: 5 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))
	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool { return runs.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}
