package server

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the scene server's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Clients        prometheus.Gauge
	MessagesSent   *prometheus.CounterVec
	SceneBuilds    *prometheus.CounterVec
	BuildDuration  prometheus.Histogram
	SceneTriangles prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice returns the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	clients, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spherevis_clients",
		Help: "Number of connected websocket clients.",
	}), "spherevis_clients")
	if err != nil {
		return nil, err
	}

	sent, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spherevis_messages_sent_total",
		Help: "Websocket messages sent, labeled by message type.",
	}, []string{"type"}), "spherevis_messages_sent_total")
	if err != nil {
		return nil, err
	}

	builds, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spherevis_scene_builds_total",
		Help: "Scene builds, labeled by outcome.",
	}, []string{"outcome"}), "spherevis_scene_builds_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "spherevis_scene_build_duration_seconds",
		Help:    "Time to load assets and assemble a scene.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "spherevis_scene_build_duration_seconds")
	if err != nil {
		return nil, err
	}

	triangles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spherevis_scene_triangles",
		Help: "Tessellated triangles in the current scene.",
	}), "spherevis_scene_triangles")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Clients:        clients,
		MessagesSent:   sent,
		SceneBuilds:    builds,
		BuildDuration:  duration,
		SceneTriangles: triangles,
	}, nil
}

// Handler exposes a /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveBuild(start time.Time, triangles int, err error) {
	if c == nil {
		return
	}
	c.BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.SceneBuilds.WithLabelValues("error").Inc()
		return
	}
	c.SceneBuilds.WithLabelValues("ok").Inc()
	c.SceneTriangles.Set(float64(triangles))
}

func (c *Collector) messageSent(msgType string) {
	if c == nil {
		return
	}
	c.MessagesSent.WithLabelValues(msgType).Inc()
}

func (c *Collector) clientConnected() {
	if c != nil {
		c.Clients.Inc()
	}
}

func (c *Collector) clientDisconnected() {
	if c != nil {
		c.Clients.Dec()
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
