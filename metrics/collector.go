// Package metrics exposes prometheus counters for compiles and raid rooms.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devtycoon/forge/raid"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "devtycoon"

// Compile results
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Collector holds the application's prometheus metrics on its own registry.
// It implements raid.Observer.
type Collector struct {
	registry *prometheus.Registry

	CompileRequests *prometheus.CounterVec
	CompileDuration *prometheus.HistogramVec

	RaidRooms        prometheus.Gauge
	RaidParticipants prometheus.Gauge
	RaidEvents       *prometheus.CounterVec
	RaidDropped      prometheus.Counter

	HTTPRequests *prometheus.CounterVec
}

var _ raid.Observer = (*Collector)(nil)

// NewCollector creates a collector. An empty namespace uses DefaultNamespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		CompileRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compile_requests_total",
				Help:      "Total number of graph compiles",
			},
			[]string{"language", "result"},
		),
		CompileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Graph compile duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"language"},
		),
		RaidRooms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "raid_rooms",
				Help:      "Number of open raid rooms",
			},
		),
		RaidParticipants: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "raid_participants",
				Help:      "Number of participants across raid rooms",
			},
		),
		RaidEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "raid_events_total",
				Help:      "Total number of raid events relayed",
			},
			[]string{"type"},
		),
		RaidDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "raid_dropped_messages_total",
				Help:      "Fan-out messages dropped because a client could not keep up",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}

	c.registry.MustRegister(
		c.CompileRequests,
		c.CompileDuration,
		c.RaidRooms,
		c.RaidParticipants,
		c.RaidEvents,
		c.RaidDropped,
		c.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry the metrics live on
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCompile records one compile
func (c *Collector) ObserveCompile(language, result string, d time.Duration) {
	c.CompileRequests.WithLabelValues(language, result).Inc()
	c.CompileDuration.WithLabelValues(language).Observe(d.Seconds())
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int) {
	c.HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func (c *Collector) RoomOpened() { c.RaidRooms.Inc() }
func (c *Collector) RoomClosed() { c.RaidRooms.Dec() }
func (c *Collector) ParticipantJoined() { c.RaidParticipants.Inc() }
func (c *Collector) ParticipantLeft() { c.RaidParticipants.Dec() }
func (c *Collector) MessageDropped() { c.RaidDropped.Inc() }

func (c *Collector) EventRelayed(t raid.EventType) {
	c.RaidEvents.WithLabelValues(string(t)).Inc()
}
