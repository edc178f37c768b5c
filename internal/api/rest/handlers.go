package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/collector"
	"github.com/breachradar/breach-risk-backend/internal/infrastructure/telemetry"
	"github.com/breachradar/breach-risk-backend/internal/service/scan"
)

// AlertLister reads persisted alerts. Satisfied by the alert repository.
type AlertLister interface {
	List(ctx context.Context, limit int) ([]alert.Alert, error)
}

// Handler serves the scan and alert endpoints. Collection and scanning are
// delegated; the handler only translates HTTP to service calls.
type Handler struct {
	orchestrator *scan.Orchestrator
	logCollector *collector.LogCollector
	apiCollector *collector.APICollector
	hub          *AlertHub
	lister       AlertLister
	logger       *slog.Logger
}

// NewHandler builds a Handler. lister is optional; when nil the alert
// endpoint serves the orchestrator's in-memory history instead.
func NewHandler(
	orchestrator *scan.Orchestrator,
	logCollector *collector.LogCollector,
	apiCollector *collector.APICollector,
	hub *AlertHub,
	lister AlertLister,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		logCollector: logCollector,
		apiCollector: apiCollector,
		hub:          hub,
		lister:       lister,
		logger:       logger,
	}
}

// handleRunScan collects fresh events, runs a full scan cycle and returns
// the result. New alerts raised by the cycle are pushed to websocket clients.
func (h *Handler) handleRunScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authEvents := h.logCollector.AuthEvents()
	endpoints := h.apiCollector.Endpoints()

	result, err := h.orchestrator.RunScan(ctx, authEvents, endpoints)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(result.Alerts)
	}

	telemetry.WithContext(ctx, h.logger).InfoContext(ctx, "scan completed",
		"scan_id", result.ID,
		"risk_score", result.RiskScore,
		"risk_level", result.RiskLevel.String(),
		"issues", len(result.Issues),
	)

	writeJSON(w, r, http.StatusOK, newScanResultResponse(result))
}

// handleLatestScan returns the most recent result, or an UNKNOWN placeholder
// when no scan has run yet.
func (h *Handler) handleLatestScan(w http.ResponseWriter, r *http.Request) {
	result, ok := h.orchestrator.Latest()
	if !ok {
		writeJSON(w, r, http.StatusOK, newScanResultResponse(nil))
		return
	}
	writeJSON(w, r, http.StatusOK, newScanResultResponse(result))
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, domainerrors.NewValidationError("INVALID_LIMIT",
				"limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	history := h.loadAlerts(r.Context(), limit)
	alerts := make([]AlertResponse, 0, len(history))
	for _, a := range history {
		alerts = append(alerts, newAlertResponse(a))
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// loadAlerts prefers the persisted history when a lister is configured,
// falling back to the in-memory window on read failure.
func (h *Handler) loadAlerts(ctx context.Context, limit int) []alert.Alert {
	if h.lister == nil {
		return h.orchestrator.AlertHistory(limit)
	}
	stored, err := h.lister.List(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "listing persisted alerts failed", "error", err)
		return h.orchestrator.AlertHistory(limit)
	}
	return stored
}

func (h *Handler) handleAlertSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"summary": summaryResponse(h.orchestrator.AlertSummary()),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}
