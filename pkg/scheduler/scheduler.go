// Package scheduler drives the fixed-delay polling loop.
//
// The loop has two states. Running performs one cycle; whatever the cycle
// returns (or panics with) is handed to the job's error reporter and the
// loop moves on to Sleeping. Sleeping waits for the configured delay and
// then moves back to Running. There is no terminal state: Run only returns
// once its context is cancelled.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	Running State = iota
	Sleeping
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Sleeping:
		return "sleeping"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Job is one unit of periodic work.
type Job interface {
	RunCycle(ctx context.Context) error
	ReportError(ctx context.Context, err error)
}

// Timer waits for d or until ctx is done.
type Timer interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type RealTimer struct{}

func (RealTimer) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Scheduler struct {
	Job          Job
	Delay        time.Duration
	Timer        Timer
	Logger       *zap.Logger
	OnTransition func(State)
}

func New(job Job, delay time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{Job: job, Delay: delay, Timer: RealTimer{}, Logger: logger}
}

// Run alternates Running and Sleeping until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.enter(Running)
		if err := s.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				s.Logger.Info("scheduler_stopped", zap.Error(ctx.Err()))
				return ctx.Err()
			}
			s.Logger.Error("cycle_failed", zap.Error(err))
			s.Job.ReportError(ctx, err)
		}

		s.enter(Sleeping)
		if err := s.Timer.Sleep(ctx, s.Delay); err != nil {
			s.Logger.Info("scheduler_stopped", zap.Error(err))
			return err
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return s.Job.RunCycle(ctx)
}

func (s *Scheduler) enter(st State) {
	s.Logger.Debug("scheduler_state", zap.Stringer("state", st))
	if s.OnTransition != nil {
		s.OnTransition(st)
	}
}
