package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
	"github.com/breachradar/breach-risk-backend/internal/service/scan"
)

// ResponseEnvelope wraps all API responses
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ErrorResponse provides detailed error information
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScanResultResponse is the wire shape of one scan result.
type ScanResultResponse struct {
	ID              uuid.UUID       `json:"id,omitempty"`
	Scanned         bool            `json:"scanned"`
	RiskScore       int             `json:"risk_score"`
	RiskLevel       string          `json:"risk_level"`
	Issues          []IssueResponse `json:"issues"`
	AlertSummary    map[string]int  `json:"alert_summary"`
	Recommendations []string        `json:"recommendations"`
	ScannedAt       *time.Time      `json:"scanned_at,omitempty"`
}

// IssueResponse is the wire shape of one issue.
type IssueResponse struct {
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	DetectedAt  time.Time `json:"detected_at"`
}

// AlertResponse is the wire shape of one alert.
type AlertResponse struct {
	ID          uuid.UUID `json:"id"`
	IssueType   string    `json:"issue_type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	RaisedAt    time.Time `json:"raised_at"`
}

// newScanResultResponse converts a completed scan into its wire shape. A nil
// result means no scan has ever run: level UNKNOWN, which callers must not
// confuse with a clean scan.
func newScanResultResponse(r *scan.Result) ScanResultResponse {
	if r == nil {
		return ScanResultResponse{
			Scanned:         false,
			RiskScore:       0,
			RiskLevel:       "UNKNOWN",
			Issues:          []IssueResponse{},
			AlertSummary:    map[string]int{},
			Recommendations: []string{},
		}
	}

	issues := make([]IssueResponse, 0, len(r.Issues))
	for _, is := range r.Issues {
		issues = append(issues, IssueResponse{
			Type:        is.Type.String(),
			Severity:    is.Severity.String(),
			Description: is.Description,
			DetectedAt:  is.DetectedAt,
		})
	}

	summary := make(map[string]int, len(r.AlertSummary))
	for sev, count := range r.AlertSummary {
		summary[sev.String()] = count
	}

	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}

	scannedAt := r.ScannedAt
	return ScanResultResponse{
		ID:              r.ID,
		Scanned:         true,
		RiskScore:       r.RiskScore,
		RiskLevel:       r.RiskLevel.String(),
		Issues:          issues,
		AlertSummary:    summary,
		Recommendations: recs,
		ScannedAt:       &scannedAt,
	}
}

func newAlertResponse(a alert.Alert) AlertResponse {
	return AlertResponse{
		ID:          a.ID,
		IssueType:   a.IssueType.String(),
		Severity:    a.Severity.String(),
		Description: a.Description,
		RaisedAt:    a.RaisedAt,
	}
}

func summaryResponse(summary map[issue.Severity]int) map[string]int {
	out := make(map[string]int, len(summary))
	for sev, count := range summary {
		out[sev.String()] = count
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	envelope := ResponseEnvelope{
		Success: status < 400,
		Data:    data,
		Meta: ResponseMeta{
			RequestID: requestIDFromContext(r.Context()),
			Timestamp: time.Now().UTC(),
			Version:   "v1",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainerrors.GetStatusCode(err)
	code := "INTERNAL_ERROR"
	message := "An internal error occurred"

	var appErr *domainerrors.AppError
	if e, ok := err.(*domainerrors.AppError); ok {
		appErr = e
	}
	if appErr != nil {
		code = appErr.Code
		message = appErr.Message
	}

	envelope := ResponseEnvelope{
		Success: false,
		Error:   &ErrorResponse{Code: code, Message: message},
		Meta: ResponseMeta{
			RequestID: requestIDFromContext(r.Context()),
			Timestamp: time.Now().UTC(),
			Version:   "v1",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}
