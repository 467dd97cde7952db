package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented records query counts, failures and latency of a catalog
type Instrumented struct {
	next     Catalog
	queries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewInstrumented(next Catalog, registerer prometheus.Registerer) *Instrumented {
	c := &Instrumented{
		next: next,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigation",
			Subsystem: "catalog",
			Name:      "queries_total",
			Help:      "Number of catalog queries by operation.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigation",
			Subsystem: "catalog",
			Name:      "failures_total",
			Help:      "Number of failed catalog queries by operation.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navigation",
			Subsystem: "catalog",
			Name:      "query_duration_seconds",
			Help:      "Catalog query latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if registerer != nil {
		registerer.MustRegister(c.queries, c.failures, c.duration)
	}
	return c
}

func (c *Instrumented) observe(operation string, start time.Time, err error) {
	c.queries.WithLabelValues(operation).Inc()
	c.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrNotFound) {
		c.failures.WithLabelValues(operation).Inc()
	}
}

func (c *Instrumented) Search(ctx context.Context, query Query) ([]Brain, error) {
	start := time.Now()
	brains, err := c.next.Search(ctx, query)
	c.observe("search", start, err)
	return brains, err
}

func (c *Instrumented) Get(ctx context.Context, p string) (*Brain, error) {
	start := time.Now()
	brain, err := c.next.Get(ctx, p)
	c.observe("get", start, err)
	return brain, err
}

func (c *Instrumented) Parents(ctx context.Context, p string) ([]Brain, error) {
	start := time.Now()
	parents, err := c.next.Parents(ctx, p)
	c.observe("parents", start, err)
	return parents, err
}
