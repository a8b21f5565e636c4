package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialin_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Storage metrics
var (
	StorageOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_storage_ops_total",
		Help: "Total number of storage reads and writes by key",
	}, []string{"op", "key", "result"})

	StorageDroppedRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_storage_dropped_records_total",
		Help: "Records skipped on load because they could not be parsed",
	}, []string{"key"})
)

// Offline cache metrics
var (
	OfflineCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialin_offline_cache_hits_total",
		Help: "Total number of asset requests served from the offline cache",
	})

	OfflineCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialin_offline_cache_misses_total",
		Help: "Total number of asset requests not found in the offline cache",
	})

	OfflineRevalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_offline_revalidations_total",
		Help: "Total number of background cache revalidations",
	}, []string{"result"})
)

// Business metrics (gauges updated periodically by collector)
var (
	ShotsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_shots_total",
		Help: "Number of shots in the log",
	})

	FavoritesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_favorites_total",
		Help: "Number of beans with a target recipe",
	})

	RecipesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_recipes_total",
		Help: "Number of saved recipes",
	})

	ActiveBeansTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_active_beans_total",
		Help: "Number of bean profiles currently in rotation",
	})

	BalancedRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_balanced_rate_percent",
		Help: "Percentage of shots rated Balanced",
	})

	TimerRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_timer_running",
		Help: "Shot timer state (1=running, 0=stopped)",
	})

	StorageFreePages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_storage_free_pages",
		Help: "Free pages in the bolt database file",
	})

	StorageOpenReadTx = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_storage_open_read_tx",
		Help: "Read transactions currently open on the bolt database",
	})
)

// Event counters (incremented on occurrence)
var (
	ShotsLoggedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_shots_logged_total",
		Help: "Total number of shots logged by rating",
	}, []string{"rating"})

	FavoritesToggledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_favorites_toggled_total",
		Help: "Total number of favorite toggles",
	}, []string{"operation"})

	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_imports_total",
		Help: "Total number of backup imports",
	}, []string{"result"})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	// Static assets - collapse into one label
	if len(path) > 8 && path[:8] == "/static/" {
		return "/static/*"
	}
	if len(path) > 7 && path[:7] == "/icons/" {
		return "/icons/*"
	}

	// Routes like /api/shots/{id}, /api/recipes/{id}/pin, etc.
	segments := splitPath(path)
	if len(segments) < 3 || segments[0] != "api" {
		return path
	}

	switch segments[1] {
	case "shots", "recipes", "beans":
		switch len(segments) {
		case 3:
			return "/api/" + segments[1] + "/:id"
		case 4:
			return "/api/" + segments[1] + "/:id/" + segments[3]
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	// Split on /
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
