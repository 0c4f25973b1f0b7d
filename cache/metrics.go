package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

type metrics struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	compilations prometheus.Counter
	fallbacks    prometheus.Counter
	waits        prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)
	return &metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "zjit_cache_hits_total",
			Help: "Number of lookups that found a finished artifact.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "zjit_cache_misses_total",
			Help: "Number of lookups that found nothing and compiled.",
		}),
		compilations: factory.NewCounter(prometheus.CounterOpts{
			Name: "zjit_cache_compilations_total",
			Help: "Number of compile attempts.",
		}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "zjit_cache_fallbacks_total",
			Help: "Number of shapes handed to the interpreter.",
		}),
		waits: factory.NewCounter(prometheus.CounterOpts{
			Name: "zjit_cache_waits_total",
			Help: "Number of times a lookup waited for another goroutine's compile.",
		}),
	}
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits         int
	Misses       int
	Compilations int
	Fallbacks    int
	Waits        int
}

func (c *Cache) Stats() Stats {
	m := c.metrics
	return Stats{
		Hits:         value(m.hits),
		Misses:       value(m.misses),
		Compilations: value(m.compilations),
		Fallbacks:    value(m.fallbacks),
		Waits:        value(m.waits),
	}
}

func value(c prometheus.Counter) int {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return int(m.GetCounter().GetValue())
}
