// Package monitor runs one fetch, format and notify pass.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/message"
	"github.com/shuliakovsky/peer-monitor/pkg/metrics"
	"github.com/shuliakovsky/peer-monitor/pkg/notify"
	"github.com/shuliakovsky/peer-monitor/pkg/peers"
	"github.com/shuliakovsky/peer-monitor/pkg/secrets"
	"github.com/shuliakovsky/peer-monitor/pkg/source"
)

type Tailer interface {
	Tail(ctx context.Context) string
}

type Auditor interface {
	Append(msg string) error
}

type Pipeline struct {
	source   source.Source
	tail     Tailer
	builder  *message.Builder
	notifier notify.Notifier
	audit    Auditor
	logger   *zap.Logger
}

// New wires a pipeline. tail may be nil, in which case messages carry no
// log section.
func New(src source.Source, tail Tailer, builder *message.Builder, n notify.Notifier, audit Auditor, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		source:   src,
		tail:     tail,
		builder:  builder,
		notifier: n,
		audit:    audit,
		logger:   logger,
	}
}

// RunCycle fetches, formats and sends one report. Only fetch failures are
// returned; delivery problems are logged and counted.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	started := time.Now()
	log := p.logger.With(zap.String("cycle", uuid.NewString()), zap.String("source", p.source.Name()))
	defer func() { metrics.CycleDuration.Observe(time.Since(started).Seconds()) }()

	snap, err := p.source.Fetch(ctx)
	if err != nil {
		metrics.Cycles.WithLabelValues("error").Inc()
		return fmt.Errorf("%s: %w", p.source.Name(), err)
	}

	var tail string
	if p.tail != nil {
		tail = p.tail.Tail(ctx)
	}
	text := p.builder.Build(snap.Records, snap.Stats, tail)
	p.deliver(ctx, log, text)

	recordPeerMetrics(snap.Records)
	metrics.Cycles.WithLabelValues("ok").Inc()
	metrics.LastSuccess.SetToCurrentTime()
	log.Info("cycle_completed",
		zap.Int("peers", len(snap.Records)),
		zap.Int64("latency_ms", time.Since(started).Milliseconds()),
	)
	return nil
}

// ReportError sends an error notification for a failed cycle.
func (p *Pipeline) ReportError(ctx context.Context, err error) {
	clean := errors.New(secrets.RedactString(err.Error()))
	p.deliver(ctx, p.logger.With(zap.String("kind", "error_report")), p.builder.BuildError(clean))
}

func (p *Pipeline) deliver(ctx context.Context, log *zap.Logger, text string) {
	res, err := p.notifier.Send(ctx, text)
	if aerr := p.audit.Append(text); aerr != nil {
		log.Warn("audit_append_error", zap.Error(aerr))
	}
	switch {
	case err != nil:
		log.Error("message_send_error", zap.String("channel", p.notifier.Name()), zap.Error(err))
	case !res.OK:
		log.Error("message_send_rejected",
			zap.String("channel", p.notifier.Name()),
			zap.Int("status", res.Status),
			zap.String("description", res.Description),
		)
	default:
		log.Info("message_sent", zap.String("channel", p.notifier.Name()), zap.Int("bytes", len(text)))
	}
}

func recordPeerMetrics(records []peers.Record) {
	for _, r := range records {
		if r.Reward != nil {
			metrics.PeerReward.WithLabelValues(r.ID).Set(toFloat(r.Reward))
		}
		if r.Wins != nil {
			metrics.PeerWins.WithLabelValues(r.ID).Set(toFloat(r.Wins))
		}
	}
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
