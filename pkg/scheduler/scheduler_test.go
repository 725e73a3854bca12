package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedJob struct {
	results  []func() error
	cycles   int
	reported []error
}

func (j *scriptedJob) RunCycle(context.Context) error {
	f := j.results[j.cycles%len(j.results)]
	j.cycles++
	return f()
}

func (j *scriptedJob) ReportError(_ context.Context, err error) {
	j.reported = append(j.reported, err)
}

// fakeTimer records requested delays and cancels after a number of sleeps.
type fakeTimer struct {
	sleeps []time.Duration
	limit  int
	cancel context.CancelFunc
}

func (f *fakeTimer) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	if len(f.sleeps) >= f.limit {
		f.cancel()
	}
	return ctx.Err()
}

func TestRun_ContinuesAfterFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &scriptedJob{results: []func() error{
		func() error { return nil },
		func() error { return errors.New("tracker: unexpected HTTP status 500") },
		func() error { panic("nil map") },
	}}
	timer := &fakeTimer{limit: 3, cancel: cancel}
	var states []State

	s := New(job, 30*time.Minute, zap.NewNop())
	s.Timer = timer
	s.OnTransition = func(st State) { states = append(states, st) }

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, job.cycles)
	require.Equal(t, []time.Duration{30 * time.Minute, 30 * time.Minute, 30 * time.Minute}, timer.sleeps)
	require.Equal(t, []State{Running, Sleeping, Running, Sleeping, Running, Sleeping}, states)

	require.Len(t, job.reported, 2)
	require.Contains(t, job.reported[0].Error(), "500")
	require.Contains(t, job.reported[1].Error(), "cycle panic: nil map")
}

func TestRun_CancelledCycleIsNotReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &scriptedJob{results: []func() error{
		func() error { cancel(); return context.Canceled },
	}}
	s := New(job, time.Minute, zap.NewNop())
	s.Timer = &fakeTimer{limit: 1, cancel: cancel}

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, job.cycles)
	require.Empty(t, job.reported)
}

func TestRealTimer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := RealTimer{}.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}

func TestRealTimer_Elapses(t *testing.T) {
	require.NoError(t, RealTimer{}.Sleep(context.Background(), time.Millisecond))
}

func TestState_String(t *testing.T) {
	require.Equal(t, "running", Running.String())
	require.Equal(t, "sleeping", Sleeping.String())
}
