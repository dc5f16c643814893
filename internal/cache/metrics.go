package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_cache_misses_total",
			Help: "Total number of response cache misses (absent or expired)",
		},
	)

	cacheSets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_cache_sets_total",
			Help: "Total number of response cache writes",
		},
	)

	cacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_cache_invalidations_total",
			Help: "Total number of response cache invalidations",
		},
		[]string{"kind"}, // "delete", "prefix", "clear"
	)
)
