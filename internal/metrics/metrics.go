// Package metrics exposes Prometheus instrumentation for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DirectoryRequests counts Radio-Browser API calls by outcome
	// ("success" or "failure").
	DirectoryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radio_directory_requests_total",
		Help: "Radio-Browser API requests by outcome.",
	}, []string{"outcome"})

	// MirrorFailures counts failed request attempts per mirror.
	MirrorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radio_mirror_failures_total",
		Help: "Failed requests per Radio-Browser mirror.",
	}, []string{"mirror"})

	// ReconnectsScheduled counts reconnect attempts scheduled after stream loss.
	ReconnectsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radio_reconnects_scheduled_total",
		Help: "Reconnect attempts scheduled after stream loss.",
	})

	// DurationCommits counts listening-duration flushes to the store.
	DurationCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radio_duration_commits_total",
		Help: "Listening-duration commits to the local store.",
	})

	// ListenedSeconds accumulates committed listening time.
	ListenedSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radio_listened_seconds_total",
		Help: "Total listening time committed, in seconds.",
	})

	// DroppedPlayerEvents counts player events discarded because the
	// event queue was full.
	DroppedPlayerEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radio_dropped_player_events_total",
		Help: "Player events dropped due to a full event queue.",
	})
)

// Handler returns the HTTP handler serving Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
