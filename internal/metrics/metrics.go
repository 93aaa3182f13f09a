package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scenesync"

// Metrics holds all collectors for one server instance.
type Metrics struct {
	connectionsActive prometheus.Gauge
	roomsActive       prometheus.Gauge
	roomMembers       prometheus.Gauge
	wsEvents          *prometheus.CounterVec

	mutations       *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec

	fanoutFrames  *prometheus.CounterVec
	fanoutDropped prometheus.Counter

	busFrames *prometheus.CounterVec
	busErrors prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	storeUp    prometheus.Gauge
	storeProbe prometheus.Histogram
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open websocket connections",
		}),
		roomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of rooms with at least one participant",
		}),
		roomMembers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_memberships",
			Help:      "Total participant memberships across all rooms",
		}),
		wsEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_events_total",
			Help:      "Inbound websocket events by name",
		}, []string{"event"}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Scene mutations by kind and result code",
		}, []string{"kind", "result"}),
		persistDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Store latency for scene mutations",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"kind"}),

		fanoutFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_frames_total",
			Help:      "Frames enqueued to participants by origin (local or bus)",
		}, []string{"origin"}),
		fanoutDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_dropped_total",
			Help:      "Frames rejected by closed connections",
		}),

		busFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_frames_total",
			Help:      "Cluster bus frames by direction",
		}, []string{"direction"}),
		busErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_errors_total",
			Help:      "Cluster bus publish and decode failures",
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		storeUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_up",
			Help:      "1 if the last store health probe succeeded",
		}),
		storeProbe: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_probe_duration_seconds",
			Help:      "Store health probe latency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
	}
}

// ConnectionOpened records a new websocket connection.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsActive.Inc()
}

// ConnectionClosed records a closed websocket connection.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

// SetRooms records current room occupancy.
func (m *Metrics) SetRooms(rooms, memberships int) {
	if m == nil {
		return
	}
	m.roomsActive.Set(float64(rooms))
	m.roomMembers.Set(float64(memberships))
}

// WSEvent counts one inbound websocket event.
func (m *Metrics) WSEvent(event string) {
	if m == nil {
		return
	}
	m.wsEvents.WithLabelValues(event).Inc()
}

// Mutation records the outcome and store latency of one mutation.
func (m *Metrics) Mutation(kind, result string, persist time.Duration) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind, result).Inc()
	if persist > 0 {
		m.persistDuration.WithLabelValues(kind).Observe(persist.Seconds())
	}
}

// FanoutDelivered counts frames enqueued to participants.
func (m *Metrics) FanoutDelivered(origin string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.fanoutFrames.WithLabelValues(origin).Add(float64(n))
}

// FanoutDropped counts frames rejected by closed connections.
func (m *Metrics) FanoutDropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.fanoutDropped.Add(float64(n))
}

// BusFrame counts one frame sent ("out") or received ("in") on the bus.
func (m *Metrics) BusFrame(direction string) {
	if m == nil {
		return
	}
	m.busFrames.WithLabelValues(direction).Inc()
}

// BusError counts a bus failure.
func (m *Metrics) BusError() {
	if m == nil {
		return
	}
	m.busErrors.Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// StoreProbe records the outcome of a store health probe.
func (m *Metrics) StoreProbe(up bool, d time.Duration) {
	if m == nil {
		return
	}
	if up {
		m.storeUp.Set(1)
	} else {
		m.storeUp.Set(0)
	}
	m.storeProbe.Observe(d.Seconds())
}
