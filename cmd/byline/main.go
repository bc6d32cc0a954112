package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/bylinehq/byline/pkg/api"
	"github.com/bylinehq/byline/pkg/auth"
	"github.com/bylinehq/byline/pkg/comments"
	"github.com/bylinehq/byline/pkg/config"
	"github.com/bylinehq/byline/pkg/observability"
	"github.com/bylinehq/byline/pkg/posts"
	"github.com/bylinehq/byline/pkg/storage"
)

// gaugeRefreshInterval is how often business gauges are recomputed
const gaugeRefreshInterval = time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", "byline")

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx := context.Background()

	db, err := storage.OpenPostgres(cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if err := storage.RunMigrations(ctx, db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Storage.CacheEnabled {
		redisClient, err = storage.NewRedisClient(cfg.Storage)
		if err != nil {
			return err
		}
		logger.Info("connected to redis")
	}

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return err
	}

	var cache *storage.Cache
	if cfg.Storage.CacheEnabled {
		cache = storage.NewCache(cfg.Storage, redisClient, metrics)
	}

	authStore := auth.NewStore(db)
	postStore := posts.NewCachedStore(posts.NewPostgresStore(db), cache, metrics)
	commentStore := comments.NewPostgresStore(db)

	server := api.NewServer(api.Options{
		Logger:        logger,
		Metrics:       metrics,
		Authenticator: authStore,
		AuthService:   authStore,
		Posts:         postStore,
		Comments:      commentStore,

		TracingEnabled: cfg.Observability.OTelEnabled,
		ServiceName:    cfg.Observability.OTelServiceName,
		AllowedOrigins: []string{"*"},
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthServer := newHealthServer(cfg, db, redisClient, registry)

	// Background maintenance: expired token cleanup and gauge refresh.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Maintenance.TokenCleanupSchedule, func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		removed, err := authStore.CleanupExpiredTokens(cleanupCtx)
		if err != nil {
			logger.WithError(err).Error("token cleanup failed")
			return
		}
		if removed > 0 {
			logger.WithField("removed", removed).Info("cleaned up expired tokens")
		}
	}); err != nil {
		return err
	}
	scheduler.Start()

	if metrics != nil {
		go refreshGauges(ctx, logger, metrics, db, authStore, postStore, commentStore)
	}

	shutdown := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		scheduler.Stop()
		return nil
	})
	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
	if cache != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error { return cache.Close() })
	}
	if providers != nil {
		shutdown.RegisterShutdownFunc(providers.Shutdown)
	}

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("starting API server")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("starting health server")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	return group.Wait()
}

// newHealthServer builds the sidecar server for probes and metrics
func newHealthServer(cfg *config.Config, db *sql.DB, redisClient *redis.Client, registry *prometheus.Registry) *http.Server {
	checker := observability.NewHealthChecker(db, redisClient)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", checker.Liveness)
	mux.HandleFunc("/readyz", checker.Readiness)
	if registry != nil {
		observability.RegisterMetricsEndpoint(mux, registry)
	}

	return &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: mux,
	}
}

// refreshGauges periodically recomputes the business and DB pool gauges
func refreshGauges(ctx context.Context, logger *observability.Logger, metrics *observability.Metrics,
	db *sql.DB, authStore *auth.Store, postStore posts.Store, commentStore comments.Store) {

	defer observability.RecoverPanic(logger, "gauge refresh")

	ticker := time.NewTicker(gaugeRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Second)

		stats := db.Stats()
		metrics.DBConnectionsActive.Set(float64(stats.InUse))
		metrics.DBConnectionsIdle.Set(float64(stats.Idle))

		if total, published, err := postStore.CountByStatus(refreshCtx); err == nil {
			metrics.PostsTotal.Set(float64(total))
			metrics.PublishedTotal.Set(float64(published))
		} else {
			logger.WithError(err).Warn("failed to refresh post gauges")
		}
		if count, err := commentStore.Count(refreshCtx); err == nil {
			metrics.CommentsTotal.Set(float64(count))
		}
		if count, err := authStore.CountActiveTokens(refreshCtx); err == nil {
			metrics.APITokensActive.Set(float64(count))
		}
		if count, err := authStore.CountUsers(refreshCtx); err == nil {
			metrics.RegisteredUsers.Set(float64(count))
		}

		cancel()
	}
}
