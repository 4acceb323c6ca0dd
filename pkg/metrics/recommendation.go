package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recs_recommend_latency_seconds",
		Help:    "Latency of the recommendations handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of recommendation requests served, by algorithm
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recs_recommend_requests_total",
		Help: "Total number of recommendation requests",
	}, []string{"algorithm"})

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recs_cache_hits_total",
		Help: "Recommendation cache hits",
	})

	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recs_cache_misses_total",
		Help: "Recommendation cache misses",
	})

	// Cache backend failures; every failure is served by computing directly
	CacheErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recs_cache_errors_total",
		Help: "Recommendation cache backend errors (request still served)",
	})

	ImpressionsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recs_impressions_dropped_total",
		Help: "Impression records dropped because the writer buffer was full",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		CacheHits,
		CacheMisses,
		CacheErrors,
		ImpressionsDropped,
	)
}
