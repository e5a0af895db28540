package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		relayDownloadsTotal,
		relayDownloadBytes,
		relayDownloadDuration,
		resolverFallbacksTotal,
		relayQueueRejectedTotal,
	)
}

// Relay results.
const (
	RelaySent          = "sent"
	RelayFailed        = "failed"
	RelayTooLarge      = "too_large"
	RelayNotConfigured = "not_configured"
	RelaySendFailed    = "send_failed"
)

var (
	relayDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_downloads_total",
			Help: "Relay invocations by source command and result.",
		},
		[]string{"source", "result"},
	)

	relayDownloadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_download_bytes",
			Help:    "Size of downloaded payloads.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8), // 16KiB .. 256MiB
		},
		[]string{"source"},
	)

	relayDownloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_download_duration_seconds",
			Help:    "Time spent fetching a payload.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"source", "success"},
	)

	resolverFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_fallbacks_total",
			Help: "Share links that could not be resolved and fell back to the original URL.",
		},
		[]string{"provider"},
	)

	relayQueueRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_queue_rejected_total",
			Help: "Relay commands rejected because the worker queue was full.",
		},
	)
)

func IncRelay(source, result string) {
	relayDownloadsTotal.WithLabelValues(norm(source), norm(result)).Inc()
}

func ObserveDownload(source string, size int64, elapsed time.Duration, success bool) {
	s := "false"
	if success {
		s = "true"
		relayDownloadBytes.WithLabelValues(norm(source)).Observe(float64(size))
	}
	relayDownloadDuration.WithLabelValues(norm(source), s).Observe(elapsed.Seconds())
}

func IncResolverFallback(provider string) {
	resolverFallbacksTotal.WithLabelValues(norm(provider)).Inc()
}

func IncQueueRejected() {
	relayQueueRejectedTotal.Inc()
}
