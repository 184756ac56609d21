package cost

import "time"

// Bucket holds aggregate token and dollar totals for one breakdown key
// (a provider, a model, or an agent type).
type Bucket struct {
	Tokens  int     `json:"tokens"`
	CostUSD float64 `json:"cost_usd"`
}

// Usage is the live accounting record for one tracked task. It is owned
// exclusively by the Estimator while the task is active; after EndTracking
// pops it the estimator retains no reference and the caller must persist the
// returned record if historical totals are needed.
//
// TokensUsed and CostUSD are monotonically non-decreasing for the lifetime of
// the record.
type Usage struct {
	TaskID    string    `json:"task_id"`
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	// EndTime is zero until EndTracking finalizes the record.
	EndTime time.Time `json:"end_time,omitempty"`

	TokensUsed int     `json:"tokens_used"`
	CostUSD    float64 `json:"cost_usd"`

	ProviderBreakdown map[string]Bucket `json:"provider_breakdown"`
	AgentBreakdown    map[string]Bucket `json:"agent_breakdown"`
}

func newUsage(taskID, sessionID string) *Usage {
	return &Usage{
		TaskID:            taskID,
		SessionID:         sessionID,
		StartTime:         time.Now().UTC(),
		ProviderBreakdown: make(map[string]Bucket),
		AgentBreakdown:    make(map[string]Bucket),
	}
}

// DailyTotal aggregates all recorded usage for one calendar day (UTC).
type DailyTotal struct {
	Date    string  `json:"date"`
	Tokens  int     `json:"tokens"`
	CostUSD float64 `json:"cost_usd"`
	Tasks   int     `json:"tasks"`
}

// Summary is a point-in-time aggregate over active tracking state and daily
// totals, optionally scoped to a session. Records already popped by
// EndTracking are not visible here.
type Summary struct {
	ActiveTasks    int               `json:"active_tasks"`
	SessionTokens  int               `json:"session_tokens"`
	SessionCostUSD float64           `json:"session_cost_usd"`
	DailyTokens    int               `json:"daily_tokens"`
	DailyCostUSD   float64           `json:"daily_cost_usd"`
	ProviderTotals map[string]Bucket `json:"provider_totals"`
	ModelTotals    map[string]Bucket `json:"model_totals"`
}
