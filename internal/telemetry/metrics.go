// Package telemetry provides Prometheus metrics and logger setup for the overlay server.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Gauges
	ClientsConnected prometheus.Gauge

	// Counters
	ChatRelayed   prometheus.Counter
	ChatRejected  prometheus.Counter
	FramesDropped prometheus.Counter
	FontRequests  *prometheus.CounterVec
)

// Font request results recorded by ObserveFontRequest.
const (
	FontServed   = "served"
	FontNotFound = "not_found"
	FontError    = "error"
)

// Init registers metrics (idempotent). Helpers are no-ops until Init runs.
func Init() {
	once.Do(func() {
		ClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{Name: "overlay_clients_connected", Help: "Number of overlay clients currently connected"})
		ChatRelayed = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_chat_messages_total", Help: "Number of chat messages normalized and broadcast"})
		ChatRejected = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_chat_messages_rejected_total", Help: "Number of chat messages dropped because they could not be normalized"})
		FramesDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "overlay_frames_dropped_total", Help: "Number of frames not queued because a client queue was full"})
		FontRequests = promauto.NewCounterVec(prometheus.CounterOpts{Name: "overlay_font_requests_total", Help: "Font asset requests by result"}, []string{"result"})
	})
}

// SetClientsConnected records the current client count.
func SetClientsConnected(n int) {
	if ClientsConnected != nil {
		ClientsConnected.Set(float64(n))
	}
}

// IncChatRelayed counts a broadcast chat message.
func IncChatRelayed() {
	if ChatRelayed != nil {
		ChatRelayed.Inc()
	}
}

// IncChatRejected counts a chat message dropped during normalization.
func IncChatRejected() {
	if ChatRejected != nil {
		ChatRejected.Inc()
	}
}

// IncFramesDropped counts a frame skipped for a lagging client.
func IncFramesDropped() {
	if FramesDropped != nil {
		FramesDropped.Inc()
	}
}

// ObserveFontRequest counts a font asset request with its result.
func ObserveFontRequest(result string) {
	if FontRequests != nil {
		FontRequests.WithLabelValues(result).Inc()
	}
}
