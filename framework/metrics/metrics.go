package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/armature-dev/armature/framework/container"
	"github.com/armature-dev/armature/framework/lifecycle"
)

const namespace = "armature"

// Registry collects framework metrics into a dedicated prometheus
// registry, kept separate from the client library's global default so
// two kernels in one process cannot collide.
type Registry struct {
	reg *prometheus.Registry
}

// New creates a metrics registry preloaded with the Go runtime and
// process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// ObserveContainer exports the resolution engine's table sizes and
// cumulative counters. stats is invoked at scrape time, so the exported
// values are always current.
func (m *Registry) ObserveContainer(stats func() container.Stats) {
	gauge := func(name, help string, value func(container.Stats) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}
	counter := func(name, help string, value func(container.Stats) float64) prometheus.CounterFunc {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}

	m.reg.MustRegister(
		gauge("providers", "Registered providers.",
			func(s container.Stats) float64 { return float64(s.Providers) }),
		gauge("singletons", "Cached singleton instances.",
			func(s container.Stats) float64 { return float64(s.Singletons) }),
		gauge("active_requests", "Request ids with a live instance cache.",
			func(s container.Stats) float64 { return float64(s.ActiveRequests) }),
		gauge("request_instances", "Cached request-scoped instances across all requests.",
			func(s container.Stats) float64 { return float64(s.RequestInstances) }),
		gauge("pending_resolutions", "Tokens parked in the deferred-resolution table.",
			func(s container.Stats) float64 { return float64(s.Pending) }),
		counter("resolutions_total", "Top-level resolution attempts.",
			func(s container.Stats) float64 { return float64(s.Resolutions) }),
		counter("failures_total", "Resolutions that returned an error.",
			func(s container.Stats) float64 { return float64(s.Failures) }),
		counter("retries_total", "Deferred-resolution retry attempts.",
			func(s container.Stats) float64 { return float64(s.Retries) }),
	)
}

// ObserveLifecycle exports the lifecycle registry's record counts.
func (m *Registry) ObserveLifecycle(stats func() lifecycle.Stats) {
	gauge := func(name, help string, value func(lifecycle.Stats) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}

	m.reg.MustRegister(
		gauge("singletons", "Singleton instances with teardown hooks.",
			func(s lifecycle.Stats) float64 { return float64(s.Singletons) }),
		gauge("transients", "Transient instances awaiting destruction.",
			func(s lifecycle.Stats) float64 { return float64(s.Transients) }),
		gauge("active_requests", "Requests with live lifecycle records.",
			func(s lifecycle.Stats) float64 { return float64(s.ActiveRequests) }),
		gauge("request_records", "Request-scoped records across all requests.",
			func(s lifecycle.Stats) float64 { return float64(s.RequestRecords) }),
	)
}

// Registerer exposes the underlying registerer so applications can hang
// their own metrics next to the framework's.
func (m *Registry) Registerer() prometheus.Registerer {
	return m.reg
}

// Handler returns the scrape endpoint handler.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
