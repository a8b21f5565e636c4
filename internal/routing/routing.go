package routing

import (
	"net/http"

	"dialin/internal/handlers"
	"dialin/internal/metrics"
	"dialin/internal/middleware"
	"dialin/internal/offline"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	// Static serves the web client. Nil disables static serving.
	Static http.Handler
	// Cache serves Static through the offline cache when set.
	Cache *offline.Cache
	// RateLimits defaults to middleware.NewDefaultRateLimitConfig.
	RateLimits *middleware.RateLimitConfig
	Logger     zerolog.Logger
}

// StaticHandler serves the web client from dir. /index.html is served in
// place rather than redirected to / so both can be cached.
func StaticHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/index.html" {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/"
			fs.ServeHTTP(w, r2)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Create CrossOriginProtection for CSRF protection
	cop := http.NewCrossOriginProtection()
	mutate := func(f http.HandlerFunc) http.Handler {
		return cop.Handler(f)
	}

	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/options", h.HandleOptions)

	// Shot log
	mux.HandleFunc("GET /api/shots", h.HandleShotList)
	mux.Handle("POST /api/shots", mutate(h.HandleShotCreate))
	mux.HandleFunc("GET /api/shots/{id}", h.HandleShotGet)
	mux.Handle("DELETE /api/shots/{id}", mutate(h.HandleShotDelete))
	mux.Handle("POST /api/shots/{id}/duplicate", mutate(h.HandleShotDuplicate))
	mux.Handle("POST /api/shots/{id}/favorite", mutate(h.HandleFavoriteToggle))

	// Derived views
	mux.HandleFunc("GET /api/insight", h.HandleInsight)
	mux.HandleFunc("GET /api/stats", h.HandleStats)
	mux.HandleFunc("GET /api/caffeine", h.HandleCaffeine)
	mux.HandleFunc("GET /api/autocomplete", h.HandleAutocomplete)

	// Recipes
	mux.HandleFunc("GET /api/recipes", h.HandleRecipeList)
	mux.Handle("POST /api/recipes", mutate(h.HandleRecipeCreate))
	mux.Handle("PUT /api/recipes/{id}", mutate(h.HandleRecipeUpdate))
	mux.Handle("DELETE /api/recipes/{id}", mutate(h.HandleRecipeDelete))
	mux.Handle("POST /api/recipes/{id}/pin", mutate(h.HandleRecipePin))
	mux.Handle("POST /api/recipes/{id}/apply", mutate(h.HandleRecipeApply))

	// Beans
	mux.HandleFunc("GET /api/beans", h.HandleBeanList)
	mux.Handle("POST /api/beans", mutate(h.HandleBeanCreate))
	mux.HandleFunc("GET /api/beans/{id}", h.HandleBeanGet)
	mux.Handle("PUT /api/beans/{id}", mutate(h.HandleBeanUpdate))
	mux.Handle("DELETE /api/beans/{id}", mutate(h.HandleBeanDelete))
	mux.Handle("POST /api/beans/{id}/active", mutate(h.HandleBeanActive))

	// Preferences
	mux.HandleFunc("GET /api/preferences", h.HandlePreferencesGet)
	mux.Handle("PUT /api/preferences", mutate(h.HandlePreferencesUpdate))

	// Backup
	mux.HandleFunc("GET /api/export/backup", h.HandleExportBackup)
	mux.HandleFunc("GET /api/export/csv", h.HandleExportCSV)
	mux.Handle("POST /api/import", mutate(h.HandleImport))

	// Stopwatch
	mux.HandleFunc("GET /api/timer", h.HandleTimerGet)
	mux.Handle("POST /api/timer/start", mutate(h.HandleTimerStart))
	mux.Handle("POST /api/timer/stop", mutate(h.HandleTimerStop))
	mux.Handle("POST /api/timer/reset", mutate(h.HandleTimerReset))
	mux.HandleFunc("GET /api/timer/ws", h.HandleTimerWS)

	mux.Handle("GET /metrics", promhttp.Handler())

	// Web client (must come after specific routes)
	if cfg.Static != nil {
		static := cfg.Static
		if cfg.Cache != nil {
			static = cfg.Cache.Middleware(static)
		}
		mux.Handle("GET /", static)
	}

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Limit request body size (innermost - runs first on request)
	handler = middleware.LimitBodyMiddleware(handler)

	// 2. Apply rate limiting
	rateLimitConfig := cfg.RateLimits
	if rateLimitConfig == nil {
		rateLimitConfig = middleware.NewDefaultRateLimitConfig()
	}
	handler = middleware.RateLimitMiddleware(rateLimitConfig)(handler)

	// 3. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 4. Apply logging middleware
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	// 5. Server spans (outermost)
	handler = otelhttp.NewHandler(handler, "dialin",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + metrics.NormalizePath(r.URL.Path)
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		}),
	)

	return handler
}
