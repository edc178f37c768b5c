package rest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/cache"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/collector"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/config"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/database"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/repository"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/telemetry"
	"github.com/breachradar/breach-risk-backend/internal/service/alerts"
	"github.com/breachradar/breach-risk-backend/internal/service/detector"
	"github.com/breachradar/breach-risk-backend/internal/service/risk"
	"github.com/breachradar/breach-risk-backend/internal/service/scan"
)

// Server wires configuration, infrastructure and services behind one HTTP
// surface. Database and Redis are optional: when unconfigured the service
// runs fully in-memory.
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	logger     *slog.Logger
	zapLogger  *zap.Logger

	db         *sql.DB
	redisCache cache.Cache
}

func NewServer(cfg *config.Config, logger *slog.Logger, zapLogger *zap.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		zapLogger: zapLogger,
	}

	// Detectors and scoring are configured once at startup; invalid
	// configuration was already rejected by config.Load.
	authDetector := detector.NewAuthDetector(detector.AuthConfig{
		BruteForceThreshold: cfg.Detection.BruteForceThreshold,
		SuspiciousHourStart: cfg.Detection.SuspiciousHourStart,
		SuspiciousHourEnd:   cfg.Detection.SuspiciousHourEnd,
	})
	apiDetector := detector.NewAPIDetector()
	misconfigDetector := detector.NewMisconfigDetector(detector.MisconfigConfig{
		DefaultUsernames: cfg.Detection.DefaultUsernames,
	})

	scorer := risk.NewScorer(
		risk.Weights{
			Critical: cfg.Scoring.CriticalWeight,
			Warning:  cfg.Scoring.WarningWeight,
			Info:     cfg.Scoring.InfoWeight,
		},
		risk.Thresholds{
			Medium:   cfg.Scoring.MediumThreshold,
			High:     cfg.Scoring.HighThreshold,
			Critical: cfg.Scoring.CriticalThreshold,
		},
	)

	alertManager := alerts.NewManager(alerts.Config{
		MaxEntries:  cfg.Alerts.MaxEntries,
		MaxAge:      cfg.Alerts.MaxAge,
		DedupWindow: cfg.Alerts.DedupWindow,
	}, alerts.NewLogNotifier(zapLogger), zapLogger)

	opts := []scan.Option{
		scan.WithMetrics(telemetry.NewMetrics(registry)),
	}

	var store *repository.Store
	if cfg.Database.URL != "" {
		db, err := database.Connect(context.Background(), &cfg.Database, zapLogger)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		s.db = db
		store = &repository.Store{
			Results: repository.NewScanResultRepository(db),
			Alerts:  repository.NewAlertRepository(db),
		}
		opts = append(opts, scan.WithStore(store))
	} else {
		zapLogger.Info("no database configured, running without persistence")
	}

	var scanCache *cache.ScanCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(&cfg.Redis, zapLogger)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.redisCache = redisCache
		scanCache = cache.NewScanCache(redisCache, cfg.Redis.ResultTTL)
		opts = append(opts, scan.WithCache(scanCache))
	} else {
		zapLogger.Info("no redis configured, running without result cache")
	}

	orchestrator := scan.NewOrchestrator(
		authDetector, apiDetector, misconfigDetector,
		scorer, alertManager, zapLogger, opts...)

	if prev := loadLastResult(context.Background(), scanCache, store, zapLogger); prev != nil {
		orchestrator.Restore(prev)
	}

	logCollector := collector.NewLogCollector(cfg.Collector.AuthLogPath, zapLogger)
	apiCollector := collector.NewAPICollector(cfg.Collector.ProbePaths, zapLogger)

	hub := NewAlertHub(logger)
	var lister AlertLister
	if store != nil {
		lister = store.Alerts
	}
	handler := NewHandler(orchestrator, logCollector, apiCollector, hub, lister, logger)

	mux := http.NewServeMux()
	s.registerRoutes(mux, handler, hub, registry)

	chain := chainMiddleware(mux,
		recoveryMiddleware(logger),
		requestIDMiddleware,
		tracingMiddleware(otel.Tracer("api.rest")),
		loggingMiddleware(logger),
		metricsMiddleware(newHTTPMetrics(registry)),
		rateLimitMiddleware(newClientRateLimiter(
			float64(cfg.Security.RateLimit.RequestsPerSecond),
			cfg.Security.RateLimit.BurstSize)),
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

func (s *Server) registerRoutes(mux *http.ServeMux, h *Handler, hub *AlertHub, registry *prometheus.Registry) {
	runScan := http.HandlerFunc(h.handleRunScan)

	// Mutating routes require a bearer token when a secret is configured.
	var protected http.Handler = runScan
	if s.cfg.Security.JWTSecret != "" {
		protected = authMiddleware(s.cfg.Security.JWTSecret)(runScan)
	}

	mux.Handle("POST /api/v1/scan", protected)
	mux.HandleFunc("GET /api/v1/scan/latest", h.handleLatestScan)
	mux.HandleFunc("GET /api/v1/alerts", h.handleAlerts)
	mux.HandleFunc("GET /api/v1/alerts/summary", h.handleAlertSummary)
	mux.Handle("GET /api/v1/alerts/stream", hub)

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// loadLastResult recovers the newest persisted scan result so a restarted
// service does not report UNKNOWN when a previous run exists. Cache first,
// database second; failures only cost the warm start.
func loadLastResult(ctx context.Context, scanCache *cache.ScanCache, store *repository.Store, logger *zap.Logger) *scan.Result {
	if scanCache != nil {
		if r, err := scanCache.GetLatest(ctx); err == nil && r != nil {
			return r
		} else if err != nil {
			logger.Warn("reading cached scan result failed", zap.Error(err))
		}
	}
	if store != nil {
		r, err := store.Results.GetLatest(ctx)
		if err != nil {
			if !domainerrors.IsType(err, domainerrors.ErrorTypeNotFound) {
				logger.Warn("reading persisted scan result failed", zap.Error(err))
			}
			return nil
		}
		return r
	}
	return nil
}

func chainMiddleware(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.cfg.Server.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP listener and closes infrastructure connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	if s.redisCache != nil {
		if err := s.redisCache.Close(); err != nil {
			s.logger.Error("closing redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("closing database", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}
