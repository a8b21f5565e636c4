package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dialin/internal/config"
	"dialin/internal/database"
	"dialin/internal/database/boltstore"
	"dialin/internal/dialin"
	"dialin/internal/handlers"
	"dialin/internal/metrics"
	"dialin/internal/middleware"
	"dialin/internal/offline"
	"dialin/internal/routing"
	"dialin/internal/timer"
	"dialin/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging() {
	// Set log level from environment (default: info)
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Use pretty console logging in development, JSON in production
	if os.Getenv("LOG_FORMAT") == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// server bundles the HTTP handler with everything that must be shut down
// after it.
type server struct {
	handler   http.Handler
	store     database.Store
	app       *dialin.App
	stopwatch *timer.Stopwatch
	cache     *offline.Cache
	limits    *middleware.RateLimitConfig
}

func (s *server) Close() {
	s.cache.Close()
	s.stopwatch.Close()
}

// newServer loads the log from store and assembles the router. Offline
// cache install failures are logged, not fatal: the static directory may
// be absent in development.
func newServer(ctx context.Context, cfg *config.Config, store database.Store) (*server, error) {
	app := dialin.New(database.NewCollections(store))
	if err := app.Load(ctx); err != nil {
		return nil, err
	}
	log.Info().
		Int("shots", app.ShotCount()).
		Int("recipes", app.RecipeCount()).
		Int("beans", app.ActiveBeanCount()).
		Msg("Log loaded")

	sw := timer.New(timer.DefaultInterval)

	static := routing.StaticHandler(cfg.StaticDir)
	var fetcher offline.Fetcher = offline.HandlerFetcher{Handler: static}
	if cfg.AssetOrigin != "" {
		fetcher = offline.NewOriginFetcher(cfg.AssetOrigin)
	}
	cache, err := offline.New(store, fetcher)
	if err != nil {
		sw.Close()
		return nil, err
	}
	if err := cache.Install(ctx); err != nil {
		log.Warn().Err(err).Msg("Offline cache install incomplete")
	}
	if err := cache.Activate(ctx); err != nil {
		log.Warn().Err(err).Msg("Offline cache activation failed")
	}

	limits := middleware.NewDefaultRateLimitConfig()
	handler := routing.SetupRouter(routing.Config{
		Handlers:   handlers.NewHandler(app, sw),
		Static:     static,
		Cache:      cache,
		RateLimits: limits,
		Logger:     log.Logger,
	})

	return &server{
		handler:   handler,
		store:     store,
		app:       app,
		stopwatch: sw,
		cache:     cache,
		limits:    limits,
	}, nil
}

// statsSource exposes the controller counts, and the bolt file statistics
// when the log lives in bolt, to the gauge collector.
func (s *server) statsSource() metrics.StatsSource {
	src := metrics.StatsSource{
		ShotCount:       s.app.ShotCount,
		FavoriteCount:   s.app.FavoriteCount,
		RecipeCount:     s.app.RecipeCount,
		ActiveBeanCount: s.app.ActiveBeanCount,
		BalancedRate:    func() int { return s.app.Stats().BalancedRate },
		TimerRunning:    s.stopwatch.Running,
	}
	if bs, ok := s.store.(*boltstore.Store); ok {
		src.StorageFreePages = func() int { return bs.Stats().FreePageN }
		src.StorageOpenReadTx = func() int { return bs.Stats().OpenTxN }
	}
	return src
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Tracing {
		tp, err := tracing.Init(ctx)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Tracer shutdown failed")
			}
		}()
		log.Info().Msg("Tracing enabled")
	}

	store, err := cfg.OpenStore()
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
		return err
	}
	defer store.Close()
	log.Info().Str("storage", cfg.Storage).Str("path", cfg.DBPath).Msg("Database opened")

	srv, err := newServer(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer srv.Close()

	metrics.StartCollector(ctx, srv.statsSource(), cfg.MetricsInterval)
	srv.limits.Run(ctx)

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", httpServer.Addr).
			Str("url", "http://localhost:"+cfg.Port).
			Str("static_dir", cfg.StaticDir).
			Msg("Starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to YAML config file")
	flag.Parse()

	setupLogging()
	log.Info().Msg("Starting dialin espresso log")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
