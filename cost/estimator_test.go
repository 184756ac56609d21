package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatRates prices every direction at $1 per 1K tokens so test math stays
// readable: 1000 tokens == $1.
func flatRates() RateTable {
	return RateTable{
		"test": {"flat": {InputPer1K: 1.0, OutputPer1K: 1.0}},
	}
}

func newTestEstimator(optFns ...func(o *Options)) *Estimator {
	base := func(o *Options) {
		o.Rates = flatRates()
		o.DefaultProvider = "test"
		o.DefaultModel = "flat"
	}
	return NewEstimator(append([]func(o *Options){base}, optFns...)...)
}

func TestEstimateSimpleQuery(t *testing.T) {
	e := NewEstimator()

	est := e.EstimateTaskCost("What is AI?", []string{"literature"}, false, "")

	assert.Equal(t, ComplexityLow, est.Complexity)
	assert.Equal(t, 0.8, est.Confidence)
	assert.Equal(t, 1, est.AgentCount)
	assert.Equal(t, 1, est.ParallelFactor)
	assert.Positive(t, est.EstimatedCostUSD)
	// 2 query tokens + 500 system prompt tokens, plus the 500-token per-agent base.
	assert.Equal(t, 1002, est.EstimatedTokens)
	assert.Contains(t, est.Reasoning, "low")
}

func TestEstimateComplexityBoundary(t *testing.T) {
	e := NewEstimator()
	agents := []string{"literature", "planning", "executor", "writer"}

	// High keyword (+3), four agents (+2), parallel (+1) scores exactly 6.
	est := e.EstimateTaskCost(
		"Please perform a comprehensive systematic review with statistical analysis",
		agents, true, "")

	assert.Equal(t, ComplexityHigh, est.Complexity)
	assert.Equal(t, 0.6, est.Confidence)
	assert.Equal(t, 4, est.AgentCount)
	assert.Equal(t, 4, est.ParallelFactor)
}

func TestEstimateMediumComplexity(t *testing.T) {
	e := NewEstimator()

	// Medium keyword (+2), two agents (+1), parallel (+1) scores 4.
	est := e.EstimateTaskCost("Compare these two treatment protocols",
		[]string{"literature", "executor"}, true, "")

	assert.Equal(t, ComplexityMedium, est.Complexity)
	assert.Equal(t, 0.8, est.Confidence)
}

func TestEstimateEmptyAgentList(t *testing.T) {
	e := NewEstimator()

	est := e.EstimateTaskCost("What is AI?", nil, false, "")

	assert.Equal(t, 1, est.AgentCount)
	assert.Equal(t, 1, est.ParallelFactor)
}

func TestEstimateParallelFactor(t *testing.T) {
	e := NewEstimator()

	sequential := e.EstimateTaskCost("q", []string{"a", "b", "c"}, false, "")
	parallel := e.EstimateTaskCost("q", []string{"a", "b", "c"}, true, "")

	assert.Equal(t, 1, sequential.ParallelFactor)
	assert.Equal(t, 3, parallel.ParallelFactor)
	assert.LessOrEqual(t, parallel.ParallelFactor, parallel.AgentCount)
}

func TestShouldProceedSessionLimit(t *testing.T) {
	e := newTestEstimator(func(o *Options) {
		o.Thresholds = Thresholds{
			SessionWarning: 1, SessionLimit: 5,
			DailyWarning: 1000, DailyLimit: 10000, EmergencyStop: 100000,
		}
	})

	// Drive session spend to $4.50 (4500 flat-rate tokens).
	e.StartTracking("task-1", "session-a")
	e.RecordUsage("task-1", "test", "flat", 4000, 500, "")

	ok, reason := e.ShouldProceed(Estimate{EstimatedCostUSD: 1.0}, "session-a")
	assert.False(t, ok)
	assert.Contains(t, reason, "session limit")

	// A different session is unaffected even though daily spend is shared.
	ok, _ = e.ShouldProceed(Estimate{EstimatedCostUSD: 1.0}, "session-b")
	assert.True(t, ok)
}

func TestShouldProceedDailyLimit(t *testing.T) {
	e := newTestEstimator(func(o *Options) {
		o.Thresholds = Thresholds{
			SessionWarning: 1000, SessionLimit: 10000,
			DailyWarning: 1, DailyLimit: 5, EmergencyStop: 100000,
		}
	})

	e.StartTracking("task-1", "session-a")
	e.RecordUsage("task-1", "test", "flat", 4000, 500, "")

	// Session ceiling is far away; the shared daily ceiling must still reject,
	// and it does so for every session.
	ok, reason := e.ShouldProceed(Estimate{EstimatedCostUSD: 1.0}, "session-b")
	assert.False(t, ok)
	assert.Contains(t, reason, "daily limit")
}

func TestShouldProceedEmergencyStopEstimate(t *testing.T) {
	e := newTestEstimator()

	ok, reason := e.ShouldProceed(Estimate{EstimatedCostUSD: 150.0}, "session-a")

	assert.False(t, ok)
	assert.Contains(t, reason, "emergency stop")
}

func TestShouldProceedWithinLimits(t *testing.T) {
	e := newTestEstimator()

	ok, reason := e.ShouldProceed(Estimate{EstimatedCostUSD: 0.5}, "session-a")

	assert.True(t, ok)
	assert.Contains(t, reason, "within limits")
}

// TestStartTrackingOverwrites pins the current plain-map behavior: a second
// StartTracking for the same task id silently discards the prior record.
// If this test starts failing the overwrite was fixed; make that deliberate.
func TestStartTrackingOverwrites(t *testing.T) {
	e := newTestEstimator()

	e.StartTracking("task-1", "session-a")
	e.RecordUsage("task-1", "test", "flat", 1000, 0, "")
	e.StartTracking("task-1", "session-b")

	usage := e.EndTracking("task-1")
	require.NotNil(t, usage)
	assert.Equal(t, "session-b", usage.SessionID)
	assert.Zero(t, usage.TokensUsed)
}

func TestRecordUsageMonotonic(t *testing.T) {
	e := newTestEstimator()
	e.StartTracking("task-1", "session-a")

	var lastTokens int
	var lastCost float64
	for i := 0; i < 5; i++ {
		e.RecordUsage("task-1", "test", "flat", 100, 50, "literature")
		s := e.UsageSummary("session-a")
		assert.GreaterOrEqual(t, s.SessionTokens, lastTokens)
		assert.GreaterOrEqual(t, s.SessionCostUSD, lastCost)
		lastTokens = s.SessionTokens
		lastCost = s.SessionCostUSD
	}

	usage := e.EndTracking("task-1")
	require.NotNil(t, usage)
	assert.Equal(t, 750, usage.TokensUsed)
	assert.InDelta(t, 0.75, usage.CostUSD, 1e-9)
}

func TestRecordUsageUntracked(t *testing.T) {
	e := newTestEstimator()

	// Must not panic and must not create tracking state.
	e.RecordUsage("ghost-task", "test", "flat", 100, 50, "")

	assert.Zero(t, e.UsageSummary("").ActiveTasks)
	assert.Nil(t, e.EndTracking("ghost-task"))
}

func TestRecordUsageBreakdowns(t *testing.T) {
	e := newTestEstimator()
	e.StartTracking("task-1", "session-a")

	e.RecordUsage("task-1", "test", "flat", 700, 300, "literature")
	e.RecordUsage("task-1", "other", "unknown-model", 100, 0, "writer")

	usage := e.EndTracking("task-1")
	require.NotNil(t, usage)
	assert.Equal(t, 1000, usage.ProviderBreakdown["test"].Tokens)
	assert.Equal(t, 100, usage.ProviderBreakdown["other"].Tokens)
	assert.Equal(t, 1000, usage.AgentBreakdown["literature"].Tokens)
	assert.Equal(t, 100, usage.AgentBreakdown["writer"].Tokens)
	// Unknown pair priced at the fallback rate.
	assert.InDelta(t, 1.0+float64(100)/1000*FallbackRate.InputPer1K, usage.CostUSD, 1e-9)
}

func TestEndTracking(t *testing.T) {
	e := newTestEstimator()
	e.StartTracking("task-1", "session-a")

	usage := e.EndTracking("task-1")
	require.NotNil(t, usage)
	assert.False(t, usage.EndTime.IsZero())
	assert.Zero(t, e.UsageSummary("session-a").ActiveTasks)

	assert.Nil(t, e.EndTracking("task-1"))
}

func TestEmergencyStopLogOnlyByDefault(t *testing.T) {
	e := newTestEstimator(func(o *Options) {
		o.Thresholds = Thresholds{
			SessionWarning: 1, SessionLimit: 1000,
			DailyWarning: 1, DailyLimit: 1000, EmergencyStop: 2,
		}
	})

	e.StartTracking("task-1", "session-a")
	e.RecordUsage("task-1", "test", "flat", 5000, 0, "")

	// Breach observed only through logs; admission stays open.
	assert.False(t, e.EmergencyStopped())
	ok, _ := e.ShouldProceed(Estimate{EstimatedCostUSD: 0.1}, "session-b")
	assert.True(t, ok)
}

func TestEmergencyStopAbortWhenConfigured(t *testing.T) {
	e := newTestEstimator(func(o *Options) {
		o.AbortOnEmergency = true
		o.Thresholds = Thresholds{
			SessionWarning: 1, SessionLimit: 1000,
			DailyWarning: 1, DailyLimit: 1000, EmergencyStop: 2,
		}
	})

	e.StartTracking("task-1", "session-a")
	e.RecordUsage("task-1", "test", "flat", 5000, 0, "")

	assert.True(t, e.EmergencyStopped())
	ok, reason := e.ShouldProceed(Estimate{EstimatedCostUSD: 0.0001}, "session-b")
	assert.False(t, ok)
	assert.Contains(t, reason, "emergency stop engaged")
}

func TestUsageSummaryScoping(t *testing.T) {
	e := newTestEstimator()
	e.StartTracking("task-1", "session-a")
	e.StartTracking("task-2", "session-b")
	e.RecordUsage("task-1", "test", "flat", 1000, 0, "")
	e.RecordUsage("task-2", "test", "flat", 500, 0, "")

	scoped := e.UsageSummary("session-a")
	assert.Equal(t, 1, scoped.ActiveTasks)
	assert.Equal(t, 1000, scoped.SessionTokens)

	all := e.UsageSummary("")
	assert.Equal(t, 2, all.ActiveTasks)
	assert.Equal(t, 1500, all.SessionTokens)
	assert.Equal(t, 1500, all.DailyTokens)
	assert.Equal(t, 1500, all.ProviderTotals["test"].Tokens)
	assert.Equal(t, 1500, all.ModelTotals["test/flat"].Tokens)
}
