// Package observability provides structured logging, Prometheus metrics, health checks,
// graceful shutdown and OpenTelemetry setup for the NPS Explorer API.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.ParseLogLevel("info"), os.Stdout)
//	logger.WithField("port", 8080).Info("Server started")
//
// Request-scoped loggers pick up request_id, user_id and trace_id from the context:
//
//	observability.FromContext(r.Context(), logger).Warn("Unauthorized request")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	metrics.RecordAuthDecision(observability.AuthModeBearer, observability.OutcomeAuthorized)
//
// HTTP metrics are labelled by mux route template, never by raw path.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient, version)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// The database is required for readiness. Redis only degrades it.
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(logger, 30*time.Second)
//	sm.RegisterShutdownFunc("database", func(context.Context) error { return db.Close() })
//	sm.RegisterServer("api", apiServer)
//	sm.WaitForShutdown(ctx)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "npsexplorer",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
package observability
