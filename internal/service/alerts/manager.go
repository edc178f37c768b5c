package alerts

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// Config bounds the alert history and the deduplication window.
type Config struct {
	// MaxEntries caps the retained history; oldest entries are evicted
	// first when the cap is exceeded.
	MaxEntries int

	// MaxAge evicts entries whose raised_at is older than now-MaxAge.
	MaxAge time.Duration

	// DedupWindow suppresses an incoming issue that matches an existing
	// alert's (type, description) raised within the window. Zero means the
	// current scan cycle only.
	DedupWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxEntries:  500,
		MaxAge:      30 * 24 * time.Hour,
		DedupWindow: 0,
	}
}

type dedupKey struct {
	issueType   issue.Type
	description string
}

// Manager converts issues into alerts and owns the retained history. The
// history is the only mutable shared state in the scan pipeline; every
// mutation is serialized behind the mutex, and each scan's alerts are
// appended as one batch.
type Manager struct {
	mu       sync.Mutex
	history  []alert.Alert
	cfg      Config
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewManager(cfg Config, notifier Notifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Manager{
		cfg:      cfg,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Process derives alerts from one scan's issues, merges them into history
// and returns the newly raised alerts. Issues matching an alert already in
// the batch, or one raised within the dedup window, are absorbed.
func (m *Manager) Process(issues []issue.Issue) []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	batch := make(map[dedupKey]struct{})
	var raised []alert.Alert

	for _, is := range issues {
		key := dedupKey{issueType: is.Type, description: is.Description}
		if _, dup := batch[key]; dup {
			continue
		}
		if m.cfg.DedupWindow > 0 && m.raisedWithinLocked(key, now.Add(-m.cfg.DedupWindow)) {
			continue
		}
		batch[key] = struct{}{}
		raised = append(raised, alert.FromIssue(is, now))
	}

	m.history = append(m.history, raised...)
	m.evictLocked(now)

	for _, a := range raised {
		if a.Severity == issue.SeverityCritical {
			m.notifier.Notify(a)
		}
	}

	if len(raised) > 0 {
		m.logger.Info("alerts raised",
			zap.Int("count", len(raised)),
			zap.Int("history_size", len(m.history)))
	}
	return raised
}

// Summary returns alert counts per severity over the retained history.
func (m *Manager) Summary() map[issue.Severity]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := map[issue.Severity]int{
		issue.SeverityCritical: 0,
		issue.SeverityWarning:  0,
		issue.SeverityInfo:     0,
	}
	for _, a := range m.history {
		summary[a.Severity]++
	}
	return summary
}

// History returns up to limit of the most recent alerts, newest last. A
// non-positive limit returns the full retained history. The returned slice
// is a copy; callers cannot mutate manager state through it.
func (m *Manager) History(limit int) []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]alert.Alert, n)
	copy(out, m.history[len(m.history)-n:])
	return out
}

// raisedWithinLocked reports whether a matching alert was raised at or after
// cutoff. Caller holds the mutex.
func (m *Manager) raisedWithinLocked(key dedupKey, cutoff time.Time) bool {
	for i := len(m.history) - 1; i >= 0; i-- {
		a := m.history[i]
		if a.RaisedAt.Before(cutoff) {
			return false
		}
		if a.IssueType == key.issueType && a.Description == key.description {
			return true
		}
	}
	return false
}

// evictLocked enforces the age and count bounds, oldest first. Caller holds
// the mutex.
func (m *Manager) evictLocked(now time.Time) {
	if m.cfg.MaxAge > 0 {
		cutoff := now.Add(-m.cfg.MaxAge)
		first := 0
		for first < len(m.history) && m.history[first].RaisedAt.Before(cutoff) {
			first++
		}
		if first > 0 {
			m.history = append([]alert.Alert(nil), m.history[first:]...)
		}
	}
	if m.cfg.MaxEntries > 0 && len(m.history) > m.cfg.MaxEntries {
		excess := len(m.history) - m.cfg.MaxEntries
		m.history = append([]alert.Alert(nil), m.history[excess:]...)
	}
}
