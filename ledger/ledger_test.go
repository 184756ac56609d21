package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunice-ai/eunice/cost"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func finalizedUsage(taskID, sessionID string, tokens int, costUSD float64) *cost.Usage {
	now := time.Now().UTC()
	return &cost.Usage{
		TaskID:     taskID,
		SessionID:  sessionID,
		StartTime:  now.Add(-time.Minute),
		EndTime:    now,
		TokensUsed: tokens,
		CostUSD:    costUSD,
		ProviderBreakdown: map[string]cost.Bucket{
			"anthropic": {Tokens: tokens, CostUSD: costUSD},
		},
		AgentBreakdown: map[string]cost.Bucket{
			"literature": {Tokens: tokens, CostUSD: costUSD},
		},
	}
}

func TestAppendAndSessionTotal(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, finalizedUsage("task-1", "session-a", 1000, 0.5)))
	require.NoError(t, l.Append(ctx, finalizedUsage("task-2", "session-a", 500, 0.25)))
	require.NoError(t, l.Append(ctx, finalizedUsage("task-3", "session-b", 100, 0.05)))

	total, err := l.SessionTotal(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, 1500, total.Tokens)
	assert.InDelta(t, 0.75, total.CostUSD, 1e-9)
}

func TestAppendRejectsUnfinalized(t *testing.T) {
	l := openTestLedger(t)

	u := finalizedUsage("task-1", "session-a", 100, 0.1)
	u.EndTime = time.Time{}

	err := l.Append(context.Background(), u)
	assert.ErrorContains(t, err, "not finalized")
}

// Task id reuse must surface as an error instead of silently merging rows.
func TestAppendRejectsDuplicateTaskID(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, finalizedUsage("task-1", "session-a", 100, 0.1)))
	assert.Error(t, l.Append(ctx, finalizedUsage("task-1", "session-a", 100, 0.1)))
}

func TestDailyTotals(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, finalizedUsage("task-1", "session-a", 1000, 0.5)))
	require.NoError(t, l.Append(ctx, finalizedUsage("task-2", "session-b", 200, 0.1)))

	days, err := l.DailyTotals(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1200, days[0].Tokens)
	assert.InDelta(t, 0.6, days[0].CostUSD, 1e-9)
	assert.Equal(t, 2, days[0].Tasks)
}

func TestSessionRecordsRoundTrip(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, finalizedUsage("task-1", "session-a", 1000, 0.5)))

	records, err := l.Session(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "task-1", records[0].TaskID)
	assert.Equal(t, 1000, records[0].ProviderBreakdown["anthropic"].Tokens)
	assert.Equal(t, 1000, records[0].AgentBreakdown["literature"].Tokens)
}
