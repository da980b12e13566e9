package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pool cache metrics
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbengine_pool_count",
		Help: "Total number of pools in the state cache",
	})

	ReadyPoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbengine_ready_pool_count",
		Help: "Number of pools with complete state",
	})

	PoolUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbengine_pool_updates_total",
			Help: "Total number of pool state updates applied",
		},
		[]string{"kind"},
	)

	UnknownPoolEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_unknown_pool_events_total",
		Help: "Events dropped because the pool is not in the cache",
	})

	// Catalog metrics
	RouteCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbengine_route_count",
		Help: "Total number of routes in the catalog",
	})

	TokenCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbengine_token_count",
		Help: "Total number of tokens in the registry",
	})

	CatalogRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_catalog_rebuilds_total",
		Help: "Total number of catalog snapshot rebuilds",
	})

	UnsafeTokenRoutesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_unsafe_token_routes_skipped_total",
		Help: "Routes excluded from the catalog by the token safety screen",
	})

	// Feed metrics
	FeedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbengine_feed_events_total",
			Help: "Total number of decoded feed events",
		},
		[]string{"type"},
	)

	FeedMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_feed_malformed_total",
		Help: "Feed lines skipped because they failed to decode",
	})

	FeedReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_feed_reconnects_total",
		Help: "Total number of feed reconnect attempts",
	})

	FeedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_feed_dropped_total",
		Help: "Decoded events dropped because the dispatch buffer was full",
	})

	// Evaluator metrics
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbengine_evaluations_total",
			Help: "Total number of pivot evaluations",
		},
		[]string{"status"},
	)

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbengine_evaluation_duration_seconds",
		Help:    "Full event-to-decision evaluation duration in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	RoutesSimulated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbengine_routes_simulated",
		Help:    "Number of candidate routes simulated per event",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
	})

	DeadlineSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_deadline_skips_total",
		Help: "Candidate routes skipped because the event deadline expired",
	})

	// Opportunity metrics
	Opportunities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_opportunities_total",
		Help: "Total number of opportunities emitted",
	})

	OpportunitiesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_opportunities_dropped_total",
		Help: "Opportunities dropped because the egress channel was full",
	})

	OpportunityProfitBp = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbengine_opportunity_profit_bp",
		Help:    "Profit of emitted opportunities in basis points",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 300, 1000, 5000},
	})

	DetectionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbengine_detection_latency_seconds",
		Help:    "Feed receipt to opportunity emission latency in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.05, 0.1},
	})

	// Quote memo cache metrics
	QuoteCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_quote_cache_hits_total",
		Help: "Total number of quote memo cache hits",
	})

	QuoteCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbengine_quote_cache_misses_total",
		Help: "Total number of quote memo cache misses",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbengine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbengine_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
