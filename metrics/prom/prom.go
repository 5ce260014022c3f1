package prom

import (
	"github.com/IvanBrykalov/offheap/arena"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements arena.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	allocs    prometheus.Counter
	frees     prometheus.Counter
	fails     prometheus.Counter
	allocated prometheus.Counter
	live      prometheus.Gauge
	mapped    prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		allocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "allocs_total",
			Help:        "Blocks handed out by the allocator",
			ConstLabels: constLabels,
		}),
		frees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "frees_total",
			Help:        "Blocks returned to the allocator",
			ConstLabels: constLabels,
		}),
		fails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "alloc_failures_total",
			Help:        "Allocations refused because an arena was full",
			ConstLabels: constLabels,
		}),
		allocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "allocated_bytes_total",
			Help:        "Bytes handed out by the allocator, rounded to block class",
			ConstLabels: constLabels,
		}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "live_bytes",
			Help:        "Bytes currently held by allocated blocks",
			ConstLabels: constLabels,
		}),
		mapped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "mapped_bytes",
			Help:        "Bytes reserved by open arenas",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.allocs, a.frees, a.fails, a.allocated, a.live, a.mapped)
	return a
}

// Alloc counts one allocation of the given block size.
func (a *Adapter) Alloc(bytes int64) {
	a.allocs.Inc()
	a.allocated.Add(float64(bytes))
	a.live.Add(float64(bytes))
}

// Free counts one released block of the given size.
func (a *Adapter) Free(bytes int64) {
	a.frees.Inc()
	a.live.Sub(float64(bytes))
}

// AllocFail increments the allocation failure counter.
func (a *Adapter) AllocFail() { a.fails.Inc() }

// Mapped adjusts the reserved-bytes gauge.
func (a *Adapter) Mapped(bytes int64) { a.mapped.Add(float64(bytes)) }

// Compile-time check: ensure Adapter implements arena.Metrics.
var _ arena.Metrics = (*Adapter)(nil)
