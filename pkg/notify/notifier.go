// Package notify delivers formatted messages to chat services.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/metrics"
)

// Result is the provider's verdict on one send.
type Result struct {
	OK          bool
	Status      int
	Description string
}

type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) (Result, error)
}

// Multi sends to every channel in order. The first channel's outcome is
// the returned one; later channels are best-effort mirrors.
type Multi struct {
	channels []Notifier
	logger   *zap.Logger
}

func NewMulti(logger *zap.Logger, channels ...Notifier) *Multi {
	return &Multi{channels: channels, logger: logger}
}

func (m *Multi) Name() string {
	names := make([]string, 0, len(m.channels))
	for _, c := range m.channels {
		names = append(names, c.Name())
	}
	return strings.Join(names, "+")
}

func (m *Multi) Send(ctx context.Context, text string) (Result, error) {
	if len(m.channels) == 0 {
		return Result{}, fmt.Errorf("no notification channels configured")
	}
	var (
		first    Result
		firstErr error
	)
	for i, c := range m.channels {
		res, err := c.Send(ctx, text)
		outcome := "ok"
		if err != nil || !res.OK {
			outcome = "fail"
			m.logger.Warn("notify_channel_failed",
				zap.String("channel", c.Name()),
				zap.Int("status", res.Status),
				zap.String("description", res.Description),
				zap.Error(err),
			)
		}
		metrics.Notifications.WithLabelValues(c.Name(), outcome).Inc()
		if i == 0 {
			first, firstErr = res, err
		}
	}
	return first, firstErr
}
