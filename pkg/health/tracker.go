package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/shuliakovsky/peer-monitor/pkg/secrets"
)

const (
	StatusStarting = "starting"
	StatusOK       = "ok"
	StatusStale    = "stale"
)

// Job matches scheduler.Job.
type Job interface {
	RunCycle(ctx context.Context) error
	ReportError(ctx context.Context, err error)
}

type Report struct {
	Status              string     `json:"status"`
	LastAttempt         *time.Time `json:"last_attempt,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastError           string     `json:"last_error,omitempty"`
}

// Tracker wraps a Job and remembers how its cycles went.
type Tracker struct {
	job     Job
	maxAge  time.Duration
	now     func() time.Time
	started time.Time

	mu          sync.RWMutex
	lastAttempt time.Time
	lastSuccess time.Time
	failures    int
	lastErr     string
	counted     bool
}

func NewTracker(job Job, maxAge time.Duration) *Tracker {
	return newTracker(job, maxAge, time.Now)
}

func newTracker(job Job, maxAge time.Duration, now func() time.Time) *Tracker {
	return &Tracker{job: job, maxAge: maxAge, now: now, started: now()}
}

func (t *Tracker) RunCycle(ctx context.Context) error {
	t.mu.Lock()
	t.counted = false
	t.mu.Unlock()

	err := t.job.RunCycle(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastAttempt = t.now()
	if err != nil {
		t.failures++
		t.lastErr = secrets.RedactString(err.Error())
		t.counted = true
		return err
	}
	t.lastSuccess = t.lastAttempt
	t.failures = 0
	t.lastErr = ""
	return nil
}

// ReportError also covers panics recovered by the scheduler, which never
// reach RunCycle's return.
func (t *Tracker) ReportError(ctx context.Context, err error) {
	t.mu.Lock()
	if !t.counted && err != nil {
		t.failures++
		t.lastAttempt = t.now()
		t.lastErr = secrets.RedactString(err.Error())
	}
	t.counted = false
	t.mu.Unlock()
	t.job.ReportError(ctx, err)
}

func (t *Tracker) Report() Report {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r := Report{ConsecutiveFailures: t.failures, LastError: t.lastErr}
	if !t.lastAttempt.IsZero() {
		la := t.lastAttempt
		r.LastAttempt = &la
	}
	now := t.now()
	switch {
	case !t.lastSuccess.IsZero():
		ls := t.lastSuccess
		r.LastSuccess = &ls
		r.Status = StatusStale
		if now.Sub(ls) <= t.maxAge {
			r.Status = StatusOK
		}
	case now.Sub(t.started) <= t.maxAge:
		r.Status = StatusStarting
	default:
		r.Status = StatusStale
	}
	return r
}

func (t *Tracker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		r := t.Report()
		w.Header().Set("Content-Type", "application/json")
		if r.Status == StatusStale {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(r)
	})
}
