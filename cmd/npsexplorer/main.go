package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/npsexplorer/explorer/pkg/api"
	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/comments"
	"github.com/npsexplorer/explorer/pkg/config"
	"github.com/npsexplorer/explorer/pkg/favorites"
	"github.com/npsexplorer/explorer/pkg/jobs"
	"github.com/npsexplorer/explorer/pkg/middleware"
	"github.com/npsexplorer/explorer/pkg/observability"
	"github.com/npsexplorer/explorer/pkg/sanitize"
	"github.com/npsexplorer/explorer/pkg/storage/postgres"
	"github.com/npsexplorer/explorer/pkg/users"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.Level(), os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("NPS Explorer API stopped with an error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)

	otelCfg := cfg.Observability.OTel()
	if otelCfg.ServiceVersion == "" {
		otelCfg.ServiceVersion = version
	}
	providers, err := observability.InitOTel(ctx, otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	if providers != nil {
		shutdown.RegisterShutdownFunc("otel", func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, providers, logger)
		})
	}

	conns, err := postgres.NewConnectionManager(ctx, postgres.ConnectionConfig{
		URL:         cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		Timeout:     cfg.Database.Timeout,
		MaxLifetime: cfg.Database.MaxLifetime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
	}, logger)
	if err != nil {
		return err
	}
	shutdown.RegisterShutdownFunc("database", func(context.Context) error {
		return conns.Close()
	})

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(conns.DB(), postgres.GooseLogger(logger)).Up(ctx); err != nil {
			_ = shutdown.Shutdown(context.Background())
			return err
		}
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(registry)
	}

	limitCfg := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.Auth.LoginRateLimit,
		WindowDuration:    cfg.Auth.LoginRateWindow,
		BurstSize:         cfg.Auth.LoginRateBurst,
	}

	var (
		redisClient  *redis.Client
		loginLimiter middleware.Limiter
		localLimiter *middleware.RateLimiter
	)
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			_ = shutdown.Shutdown(context.Background())
			return fmt.Errorf("invalid redis url: %w", err)
		}
		if cfg.Redis.PoolSize > 0 {
			opts.PoolSize = cfg.Redis.PoolSize
		}
		redisClient = redis.NewClient(opts)
		shutdown.RegisterShutdownFunc("redis", func(context.Context) error {
			return redisClient.Close()
		})
		loginLimiter = middleware.NewDistributedRateLimiter(redisClient, limitCfg, "npsexplorer:ratelimit", metrics)
		logger.Info("Login rate limiter backed by Redis")
	} else {
		localLimiter = middleware.NewRateLimiter(limitCfg)
		loginLimiter = localLimiter
		logger.Info("Login rate limiter running in memory")
	}

	userStore := users.NewPostgresStore(conns.DB(), metrics)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	authenticator := auth.NewAuthenticator(userStore, hasher, auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))

	server := api.NewServer(api.Dependencies{
		Authenticator: authenticator,
		Hasher:        hasher,
		StaticToken:   auth.NewStaticToken(cfg.Auth.APIToken),
		Users:         userStore,
		Comments:      comments.NewPostgresStore(conns.DB(), metrics),
		Favorites:     favorites.NewPostgresStore(conns.DB(), metrics),
		LoginLimiter:  loginLimiter,
		Logger:        logger,
		Metrics:       metrics,
		Sanitizer:     sanitize.New(),
	}, api.Options{
		CORSOrigins:  cfg.Server.CORSOrigins,
		TrustProxy:   cfg.Server.TrustProxy,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Tracing:      otelCfg.Enabled,
	})

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(conns.DB(), redisClient, version))
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:     healthMux,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	scheduler := jobs.NewScheduler(logger)
	if metrics != nil {
		if err := scheduler.Add("db-stats", cfg.Observability.MaintenanceSchedule, jobs.DBStatsJob(conns, metrics)); err != nil {
			_ = shutdown.Shutdown(context.Background())
			return err
		}
	}
	if localLimiter != nil {
		if err := scheduler.Add("login-limiter-cleanup", cfg.Observability.MaintenanceSchedule, jobs.CleanupJob("login-limiter", localLimiter, logger)); err != nil {
			_ = shutdown.Shutdown(context.Background())
			return err
		}
	}
	scheduler.Start()
	shutdown.RegisterShutdownFunc("scheduler", scheduler.Stop)

	// Servers are registered last so they drain before the database closes
	shutdown.RegisterServer("health server", healthServer)
	shutdown.RegisterServer("api server", apiServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer observability.RecoverToError(logger, "api server", &err)
		logger.WithField("addr", apiServer.Addr).Info("Starting NPS Explorer API")
		return serve(apiServer)
	})
	g.Go(func() (err error) {
		defer observability.RecoverToError(logger, "health server", &err)
		logger.WithField("addr", healthServer.Addr).Info("Starting health and metrics server")
		return serve(healthServer)
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})

	return g.Wait()
}

// serve runs srv until it is shut down. A graceful shutdown is not an error.
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", srv.Addr, err)
	}
	return nil
}
