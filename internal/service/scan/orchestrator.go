package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	"github.com/breachradar/breach-risk-backend/internal/domain/event"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/telemetry"
	"github.com/breachradar/breach-risk-backend/internal/service/alerts"
	"github.com/breachradar/breach-risk-backend/internal/service/detector"
	"github.com/breachradar/breach-risk-backend/internal/service/risk"
)

// Result aggregates one scan cycle. It is immutable after creation; the
// orchestrator hands out copies, never detector-owned state.
type Result struct {
	ID              uuid.UUID              `json:"id"`
	RiskScore       int                    `json:"risk_score"`
	RiskLevel       risk.Level             `json:"risk_level"`
	Issues          []issue.Issue          `json:"issues"`
	Alerts          []alert.Alert          `json:"alerts"`
	AlertSummary    map[issue.Severity]int `json:"alert_summary"`
	Recommendations []string               `json:"recommendations"`
	ScannedAt       time.Time              `json:"scanned_at"`
}

// ResultStore persists scan results. Implemented by the repository layer.
type ResultStore interface {
	SaveResult(ctx context.Context, r *Result) error
	SaveAlerts(ctx context.Context, as []alert.Alert) error
}

// ResultCache keeps the latest result hot for read endpoints.
type ResultCache interface {
	SetLatest(ctx context.Context, r *Result) error
}

// Orchestrator runs one scan cycle: detector fan-out, a join before
// aggregation, then scoring and alerting over the complete issue set. It
// also remembers whether a scan has ever completed, so callers can tell
// "zero issues found" apart from "never scanned".
type Orchestrator struct {
	auth      *detector.AuthDetector
	api       *detector.APIDetector
	misconfig *detector.MisconfigDetector
	scorer    *risk.Scorer
	alerts    *alerts.Manager

	store   ResultStore
	cache   ResultCache
	metrics *telemetry.Metrics
	logger  *zap.Logger
	tracer  trace.Tracer

	mu   sync.RWMutex
	last *Result
}

// Option configures optional collaborators.
type Option func(*Orchestrator)

func WithStore(store ResultStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

func WithCache(cache ResultCache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func NewOrchestrator(
	auth *detector.AuthDetector,
	api *detector.APIDetector,
	misconfig *detector.MisconfigDetector,
	scorer *risk.Scorer,
	alertMgr *alerts.Manager,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		auth:      auth,
		api:       api,
		misconfig: misconfig,
		scorer:    scorer,
		alerts:    alertMgr,
		logger:    logger,
		tracer:    telemetry.Tracer("service.scan"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunScan executes all detectors over the provided event streams and
// aggregates their issues into a single result. Detectors run concurrently;
// they share no mutable state and none observes another's output. Scoring
// and alerting only start once every detector has finished.
//
// Empty inputs are normal, not errors: they produce a zero-issue LOW result.
func (o *Orchestrator) RunScan(ctx context.Context, authEvents []event.AuthEvent, endpoints []event.Endpoint) (*Result, error) {
	ctx, span := o.tracer.Start(ctx, "scan.run",
		trace.WithAttributes(
			attribute.Int("scan.auth_events", len(authEvents)),
			attribute.Int("scan.endpoints", len(endpoints)),
		))
	defer span.End()

	started := time.Now()

	var (
		authIssues      []issue.Issue
		apiIssues       []issue.Issue
		misconfigIssues []issue.Issue
		wg              sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		authIssues = o.auth.DetectAuth(authEvents)
	}()
	go func() {
		defer wg.Done()
		apiIssues = o.api.DetectEndpoints(endpoints)
	}()
	go func() {
		defer wg.Done()
		misconfigIssues = o.misconfig.Detect(authEvents, endpoints)
	}()
	wg.Wait()

	// Concatenation order is fixed so identical inputs yield identical
	// results regardless of which detector finishes first.
	all := make([]issue.Issue, 0, len(authIssues)+len(apiIssues)+len(misconfigIssues))
	all = append(all, authIssues...)
	all = append(all, apiIssues...)
	all = append(all, misconfigIssues...)

	assessment := o.scorer.Score(all)
	raised := o.alerts.Process(all)
	telemetry.AddEvent(span, "alerts.raised", attribute.Int("count", len(raised)))

	result := &Result{
		ID:              uuid.New(),
		RiskScore:       assessment.Score,
		RiskLevel:       assessment.Level,
		Issues:          all,
		Alerts:          raised,
		AlertSummary:    o.alerts.Summary(),
		Recommendations: assessment.Recommendations,
		ScannedAt:       started,
	}

	o.mu.Lock()
	o.last = result
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.ObserveScan(time.Since(started), result.RiskScore, all)
	}
	span.SetAttributes(
		attribute.Int("scan.issues", len(all)),
		attribute.Int("scan.risk_score", result.RiskScore),
		attribute.String("scan.risk_level", result.RiskLevel.String()),
	)

	if o.store != nil {
		if err := o.store.SaveResult(ctx, result); err != nil {
			telemetry.RecordError(span, err)
			o.logger.Error("persisting scan result failed", zap.Error(err))
		}
		if err := o.store.SaveAlerts(ctx, raised); err != nil {
			telemetry.RecordError(span, err)
			o.logger.Error("persisting alerts failed", zap.Error(err))
		}
	}
	if o.cache != nil {
		if err := o.cache.SetLatest(ctx, result); err != nil {
			o.logger.Warn("caching scan result failed", zap.Error(err))
		}
	}

	o.logger.Info("scan completed",
		zap.Int("issues", len(all)),
		zap.Int("risk_score", result.RiskScore),
		zap.String("risk_level", result.RiskLevel.String()),
		zap.Duration("duration", time.Since(started)))

	return result, nil
}

// Restore preloads a previously persisted result, typically at startup, so
// the read endpoints reflect the last completed run after a restart. It
// never overwrites a result from the current process.
func (o *Orchestrator) Restore(r *Result) {
	if r == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		o.last = r
	}
}

// Latest returns the most recent result and whether any scan has completed.
// Before the first scan there is no result: callers report level UNKNOWN,
// which is distinct from a completed scan that found nothing.
func (o *Orchestrator) Latest() (*Result, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last, o.last != nil
}

// AlertSummary exposes the alert manager's current severity counts.
func (o *Orchestrator) AlertSummary() map[issue.Severity]int {
	return o.alerts.Summary()
}

// AlertHistory exposes up to limit retained alerts.
func (o *Orchestrator) AlertHistory(limit int) []alert.Alert {
	return o.alerts.History(limit)
}
