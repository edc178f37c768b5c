package alerts

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/breachradar/breach-risk-backend/internal/domain/alert"
	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

type recordingNotifier struct {
	notified []alert.Alert
}

func (n *recordingNotifier) Notify(a alert.Alert) {
	n.notified = append(n.notified, a)
}

func newTestManager(cfg Config, notifier Notifier) *Manager {
	return NewManager(cfg, notifier, zap.NewNop())
}

func testIssue(t issue.Type, desc string, ts time.Time) issue.Issue {
	return issue.New(t, desc, ts)
}

func TestManager_ProcessRaisesAlerts(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newTestManager(DefaultConfig(), nil)

	raised := m.Process([]issue.Issue{
		testIssue(issue.TypeBruteForce, "actor \"alice\" had 5 failed login attempts", ts),
		testIssue(issue.TypeDefaultCredentials, "default account name \"admin\" is in use", ts),
	})

	require.Len(t, raised, 2)
	assert.Equal(t, issue.TypeBruteForce, raised[0].IssueType)
	assert.Equal(t, issue.SeverityCritical, raised[0].Severity)
	assert.NotEqual(t, raised[0].ID, raised[1].ID)

	history := m.History(0)
	assert.Len(t, history, 2)
}

func TestManager_SameCycleDedup(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newTestManager(DefaultConfig(), nil)

	dup := testIssue(issue.TypePublicEndpoint, "endpoint \"/api/health\" is publicly accessible", ts)
	raised := m.Process([]issue.Issue{dup, dup, dup})

	assert.Len(t, raised, 1)
	assert.Len(t, m.History(0), 1)
}

func TestManager_ZeroWindowAllowsRepeatAcrossCycles(t *testing.T) {
	// With no dedup window, the same finding in consecutive scans raises a
	// fresh alert each time.
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newTestManager(DefaultConfig(), nil)

	is := testIssue(issue.TypeMissingAuth, "sensitive endpoint \"/api/users\" does not require authentication", ts)

	assert.Len(t, m.Process([]issue.Issue{is}), 1)
	assert.Len(t, m.Process([]issue.Issue{is}), 1)
	assert.Len(t, m.History(0), 2)
}

func TestManager_DedupWindowSuppressesRepeat(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.DedupWindow = time.Hour

	m := newTestManager(cfg, nil)
	current := ts
	m.now = func() time.Time { return current }

	is := testIssue(issue.TypeExposedEndpoint, "sensitive endpoint \"/api/admin/settings\" is publicly accessible", ts)

	assert.Len(t, m.Process([]issue.Issue{is}), 1)

	// Within the window the repeat is absorbed.
	current = ts.Add(30 * time.Minute)
	assert.Empty(t, m.Process([]issue.Issue{is}))

	// Past the window it is raised again.
	current = ts.Add(2 * time.Hour)
	assert.Len(t, m.Process([]issue.Issue{is}), 1)

	assert.Len(t, m.History(0), 2)
}

func TestManager_CountEviction(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.MaxEntries = 5

	m := newTestManager(cfg, nil)

	for i := 0; i < 20; i++ {
		m.Process([]issue.Issue{
			testIssue(issue.TypePublicEndpoint, fmt.Sprintf("endpoint %d", i), ts),
		})
		assert.LessOrEqual(t, len(m.History(0)), cfg.MaxEntries)
	}

	history := m.History(0)
	require.Len(t, history, 5)
	// Oldest evicted first; the survivors are the newest five.
	assert.Equal(t, "endpoint 15", history[0].Description)
	assert.Equal(t, "endpoint 19", history[4].Description)
}

func TestManager_AgeEviction(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.MaxAge = 24 * time.Hour

	m := newTestManager(cfg, nil)
	current := base
	m.now = func() time.Time { return current }

	m.Process([]issue.Issue{testIssue(issue.TypePublicEndpoint, "old finding", base)})
	require.Len(t, m.History(0), 1)

	// Two days later a new scan evicts the stale entry.
	current = base.Add(48 * time.Hour)
	m.Process([]issue.Issue{testIssue(issue.TypePublicEndpoint, "new finding", current)})

	history := m.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, "new finding", history[0].Description)
}

func TestManager_NotifierOnlyForCritical(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	m := newTestManager(DefaultConfig(), notifier)

	m.Process([]issue.Issue{
		testIssue(issue.TypeBruteForce, "critical finding", ts),
		testIssue(issue.TypeSuspiciousLoginTime, "warning finding", ts),
		testIssue(issue.TypeDefaultCredentials, "info finding", ts),
	})

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, issue.TypeBruteForce, notifier.notified[0].IssueType)
}

func TestManager_Summary(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newTestManager(DefaultConfig(), nil)

	m.Process([]issue.Issue{
		testIssue(issue.TypeBruteForce, "a", ts),
		testIssue(issue.TypeMissingAuth, "b", ts),
		testIssue(issue.TypeSuspiciousLoginTime, "c", ts),
		testIssue(issue.TypePublicEndpoint, "d", ts),
	})

	summary := m.Summary()
	assert.Equal(t, 2, summary[issue.SeverityCritical])
	assert.Equal(t, 1, summary[issue.SeverityWarning])
	assert.Equal(t, 1, summary[issue.SeverityInfo])
}

func TestManager_HistoryLimit(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newTestManager(DefaultConfig(), nil)

	for i := 0; i < 10; i++ {
		m.Process([]issue.Issue{
			testIssue(issue.TypePublicEndpoint, fmt.Sprintf("endpoint %d", i), ts),
		})
	}

	limited := m.History(3)
	require.Len(t, limited, 3)
	assert.Equal(t, "endpoint 7", limited[0].Description)
	assert.Equal(t, "endpoint 9", limited[2].Description)

	assert.Len(t, m.History(0), 10)
	assert.Len(t, m.History(-1), 10)
	assert.Len(t, m.History(100), 10)
}

func TestManager_HistoryReturnsCopy(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := newTestManager(DefaultConfig(), nil)
	m.Process([]issue.Issue{testIssue(issue.TypePublicEndpoint, "finding", ts)})

	history := m.History(0)
	history[0].Description = "mutated"

	assert.Equal(t, "finding", m.History(0)[0].Description)
}

func TestManager_EmptyBatchIsNoop(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil)

	assert.Empty(t, m.Process(nil))
	assert.Empty(t, m.History(0))

	summary := m.Summary()
	assert.Equal(t, 0, summary[issue.SeverityCritical])
}
