package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"presencegate/internal/core/domain"
	"presencegate/internal/core/ports"
	"presencegate/internal/core/services"
	httphandlers "presencegate/internal/handlers/http"
	"presencegate/internal/infrastructure/middleware"
	"presencegate/internal/infrastructure/monitoring"
	"presencegate/internal/infrastructure/peer/gateway"
	"presencegate/internal/infrastructure/peer/loopback"
	"presencegate/pkg/clock"
	"presencegate/pkg/config"
	apperrors "presencegate/pkg/errors"
	"presencegate/pkg/logger"
	"presencegate/pkg/ratelimit"
	"presencegate/pkg/tracing"
	"presencegate/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/presencegate/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	log.Infow("configuration loaded",
		"application_id", cfg.Application.ID,
		"peer_backend", cfg.Peer.Backend,
		"gateway_token", utils.MaskSensitive(cfg.Peer.Gateway.Token, 4),
		"server_enabled", cfg.Server.Enabled,
	)

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Errorw("error shutting down tracer provider", "error", err)
		}
	}()

	// Select the peer backend
	var peer ports.Peer
	switch cfg.Peer.Backend {
	case "gateway":
		peer = gateway.New(gateway.Config{
			Token:  cfg.Peer.Gateway.Token,
			Status: cfg.Peer.Gateway.Status,
		}, log)
	default:
		peer = loopback.New(log)
	}

	limiter := ratelimit.New(cfg.Presence.MinUpdateInterval, clock.System())
	prometheusCollector := monitoring.NewPrometheusCollector()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := services.NewPresenceClient(
		rootCtx,
		cfg.Application.ID,
		peer,
		limiter,
		log,
		prometheusCollector,
	)
	if err != nil {
		log.Fatalw("failed to initialize presence client", "error", err)
	}

	log.Infow("presence client initialized",
		"application_id", client.ApplicationID(),
		"instance_id", client.InstanceID(),
		"min_update_interval", client.MinUpdateInterval(),
	)

	// Initialize monitoring
	health := monitoring.NewHealthChecker()
	health.AddClientCheck(client, 2*time.Second)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLoggerMiddleware(logger.NewContextLogger(zapLogger)))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	router.Use(middleware.ErrorHandlerMiddleware(log))

	presenceHandler := httphandlers.NewPresenceHandler(client, health)
	presenceHandler.SetupRoutes(router)

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	var srv *http.Server
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		srv = &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		go func() {
			log.Infof("Starting presencegate server on %s", cfg.Server.Address)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()
	}

	// Drive the peer's event pump on the client's schedule
	go runTickLoop(rootCtx, client, cfg.Presence.TickInterval, log)

	// Rotate configured presence entries, if any
	if len(cfg.Presence.Entries) > 0 {
		go runRotation(rootCtx, client, cfg.Presence.Entries, cfg.Presence.RotationInterval, log)
	}

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down presencegate...")

	// Stop the tick and rotation loops before tearing anything down
	cancel()

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server gracefully
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Error during server shutdown", "error", err)
			// Force close if graceful shutdown fails
			if closeErr := srv.Close(); closeErr != nil {
				log.Errorw("Error force closing server", "error", closeErr)
			}
		} else {
			log.Info("Server shutdown gracefully")
		}
	}

	client.Shutdown(shutdownCtx)

	log.Infow("presencegate stopped", "uptime", utils.FormatDuration(time.Since(startTime)))
}

// runTickLoop pumps the peer's event queue at a fixed cadence until ctx is
// cancelled. Tick failures are logged and the loop keeps going; a dead peer
// surfaces through the health check, not by killing the daemon.
func runTickLoop(ctx context.Context, client ports.PresenceService, interval time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickCtx, span := tracing.TraceTick(ctx, client.ApplicationID())
			if err := client.Tick(tickCtx); err != nil {
				tracing.RecordError(tickCtx, err)
				log.Warnw("tick failed", "error", err)
			}
			span.End()
		}
	}
}

// runRotation cycles through the configured presence entries round-robin.
// The first entry is applied immediately so the presence is visible before
// the first rotation interval elapses. Entries whose end timestamp has
// already passed are skipped.
func runRotation(ctx context.Context, client ports.PresenceService, entries []config.PresenceEntry, interval time.Duration, log *zap.SugaredLogger) {
	idx := 0
	applyNext := func() {
		entry := entries[idx%len(entries)]
		idx++

		if entry.EndsAt != "" {
			if endsAt, err := utils.ParseTimestamp(entry.EndsAt); err == nil && utils.IsExpired(endsAt, 0) {
				log.Debugw("skipping expired presence entry", "details", entry.Details, "ends_at", entry.EndsAt)
				return
			}
		}

		applyEntry(ctx, client, entry, log)
	}

	applyNext()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			applyNext()
		}
	}
}

// applyEntry submits one configured entry. A cooldown rejection is expected
// when rotation runs close to the minimum update interval; in that case the
// entry waits out the remaining cooldown and retries once.
func applyEntry(ctx context.Context, client ports.PresenceService, entry config.PresenceEntry, log *zap.SugaredLogger) {
	presence := entryPresence(entry)

	updateCtx, span := tracing.TracePresenceUpdate(ctx, client.ApplicationID())
	defer span.End()
	defer tracing.MeasureDuration(updateCtx, time.Now(), "presence.update")

	err := client.UpdatePresence(updateCtx, presence)
	if err == nil {
		log.Infow("presence updated", "details", entry.Details, "state", entry.State)
		return
	}

	retryAfter, ok := apperrors.RetryAfterOf(err)
	if !ok {
		tracing.RecordError(updateCtx, err)
		log.Warnw("presence update failed", "details", entry.Details, "error", err)
		return
	}

	log.Infow("presence update on cooldown", "retry_in", utils.FormatDuration(retryAfter))
	select {
	case <-ctx.Done():
		return
	case <-time.After(retryAfter):
	}

	if err := client.UpdatePresence(updateCtx, presence); err != nil {
		tracing.RecordError(updateCtx, err)
		log.Warnw("presence update failed after cooldown", "details", entry.Details, "error", err)
	}
}

// entryPresence translates a config entry into a domain presence. Config
// validation has already vetted kinds, labels and URLs, so parse failures
// here simply leave the offending field unset.
func entryPresence(entry config.PresenceEntry) domain.Presence {
	opts := []domain.PresenceOption{
		domain.WithDetails(entry.Details),
		domain.WithState(entry.State),
	}

	if kind, err := domain.ParseActivityKind(entry.Kind); err == nil {
		opts = append(opts, domain.WithKind(kind))
	}

	opts = append(opts, domain.WithAssets(domain.Assets{
		LargeImageKey: entry.LargeImageKey,
		LargeText:     entry.LargeText,
		SmallImageKey: entry.SmallImageKey,
		SmallText:     entry.SmallText,
	}))

	if entry.ShowElapsed {
		opts = append(opts, domain.WithElapsedSince(time.Now()))
	} else if entry.EndsAt != "" {
		if endsAt, err := utils.ParseTimestamp(entry.EndsAt); err == nil {
			opts = append(opts, domain.WithRemainingUntil(endsAt))
		}
	}

	var buttons []domain.Button
	for _, b := range entry.Buttons {
		if u, err := url.Parse(b.URL); err == nil {
			buttons = append(buttons, domain.Button{Label: b.Label, URL: u})
		}
	}
	if len(buttons) > 0 {
		opts = append(opts, domain.WithButtons(buttons...))
	}

	return domain.NewPresence(opts...)
}
