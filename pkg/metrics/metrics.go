package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peermon_cycles_total", Help: "Completed polling cycles by result"},
		[]string{"result"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "peermon_cycle_duration_seconds", Help: "Wall time of one polling cycle", Buckets: prometheus.DefBuckets},
	)
	LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "peermon_last_success_timestamp_seconds", Help: "Unix time of the last successful cycle"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peermon_notifications_total", Help: "Outgoing chat messages by channel and result"},
		[]string{"channel", "result"},
	)
	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peermon_upstream_errors_total", Help: "Failed upstream lookups"},
		[]string{"source"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "peermon_address_cache_lookups_total", Help: "Address cache lookups by outcome"},
		[]string{"outcome"},
	)
	PeerReward = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "peermon_peer_reward", Help: "Total reward per peer"},
		[]string{"peer"},
	)
	PeerWins = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "peermon_peer_wins", Help: "Total wins per peer"},
		[]string{"peer"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(Cycles, CycleDuration, LastSuccess, Notifications)
		prometheus.MustRegister(UpstreamErrors, CacheLookups, PeerReward, PeerWins)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
