package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector собирает метрики доски задач на собственном реестре.
// Методы безопасно вызывать у nil-коллектора.
type Collector struct {
	registry *prometheus.Registry

	enrichTotal    prometheus.Counter
	enrichDuration prometheus.Histogram
	enrichedTasks  prometheus.Histogram
	memoHits       prometheus.Counter

	snapshotRequests *prometheus.CounterVec
	taskMutations    *prometheus.CounterVec

	wsClients prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		enrichTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_enrich_total",
			Help: "Total number of scheduling metric recomputations",
		}),
		enrichDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskboard_enrich_duration_seconds",
			Help:    "Time spent computing scheduling metrics",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		enrichedTasks: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskboard_enriched_tasks",
			Help:    "Number of tasks per recomputation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		memoHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_memo_hits_total",
			Help: "Enrichment requests served from the memoized result",
		}),
		snapshotRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_snapshot_requests_total",
			Help: "Task snapshot lookups by cache result",
		}, []string{"result"}),
		taskMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_task_mutations_total",
			Help: "Task changes by operation",
		}, []string{"op"}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "taskboard_ws_clients",
			Help: "Currently connected live-update clients",
		}),
	}
}

func (c *Collector) MemoHit() {
	if c == nil {
		return
	}
	c.memoHits.Inc()
}

// Enriched фиксирует один пересчет метрик
func (c *Collector) Enriched(tasks int, seconds float64) {
	if c == nil {
		return
	}
	c.enrichTotal.Inc()
	c.enrichDuration.Observe(seconds)
	c.enrichedTasks.Observe(float64(tasks))
}

func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.snapshotRequests.WithLabelValues("hit").Inc()
}

func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.snapshotRequests.WithLabelValues("miss").Inc()
}

// TaskMutation считает изменения задач: create, update, delete
func (c *Collector) TaskMutation(op string) {
	if c == nil {
		return
	}
	c.taskMutations.WithLabelValues(op).Inc()
}

func (c *Collector) ClientConnected() {
	if c == nil {
		return
	}
	c.wsClients.Inc()
}

func (c *Collector) ClientDisconnected() {
	if c == nil {
		return
	}
	c.wsClients.Dec()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler отдает метрики в формате Prometheus
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
