package cost

import (
	"fmt"
	"sync"
	"time"

	"github.com/eunice-ai/eunice/logging"
)

// dayKey formats a timestamp into the UTC calendar-day key used by the daily
// usage map.
func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// Options configure an Estimator. All fields have working defaults.
type Options struct {
	// Rates is the provider/model price table. Pairs missing from the table
	// fall back to FallbackRate with a warning.
	Rates RateTable
	// Thresholds are the session/daily/emergency spend ceilings.
	Thresholds Thresholds
	// DefaultProvider/DefaultModel is the pricing pair used for estimation
	// when a task spans multiple agents.
	DefaultProvider string
	DefaultModel    string
	// SystemPromptTokens approximates the per-agent system prompt overhead.
	SystemPromptTokens int
	// AbortOnEmergency engages the emergency stop when the daily total
	// crosses Thresholds.EmergencyStop: subsequent ShouldProceed calls
	// reject every task. When false (the default) the breach is only
	// logged at error level.
	AbortOnEmergency bool
	// Logger receives threshold and pricing-gap diagnostics.
	Logger logging.Logger
}

// Estimator is the shared cost projection and accounting service. A single
// instance is injected into every agent that spends tokens; all state is
// guarded by one mutex so callers may use it from any goroutine.
type Estimator struct {
	mu sync.Mutex

	rates              RateTable
	thresholds         Thresholds
	defaultProvider    string
	defaultModel       string
	systemPromptTokens int
	abortOnEmergency   bool
	logger             logging.Logger

	// active maps task id to its live usage record. A plain map: starting
	// tracking twice for one task id silently overwrites the prior record,
	// so callers must never reuse task ids.
	active map[string]*Usage
	daily  map[string]*DailyTotal

	providerTotals map[string]Bucket
	modelTotals    map[string]Bucket

	emergencyStopped bool
}

// NewEstimator constructs an Estimator with optional overrides.
func NewEstimator(optFns ...func(o *Options)) *Estimator {
	opts := Options{
		Rates:              DefaultRateTable(),
		Thresholds:         DefaultThresholds(),
		DefaultProvider:    "anthropic",
		DefaultModel:       "claude-sonnet-4-20250514",
		SystemPromptTokens: 500,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Estimator{
		rates:              opts.Rates,
		thresholds:         opts.Thresholds,
		defaultProvider:    opts.DefaultProvider,
		defaultModel:       opts.DefaultModel,
		systemPromptTokens: opts.SystemPromptTokens,
		abortOnEmergency:   opts.AbortOnEmergency,
		logger:             opts.Logger,
		active:             make(map[string]*Usage),
		daily:              make(map[string]*DailyTotal),
		providerTotals:     make(map[string]Bucket),
		modelTotals:        make(map[string]Bucket),
	}
}

// EstimateTaskCost projects tokens and dollars for a prospective task.
//
// The projection tokenizes query and context by approximation, classifies
// complexity, scales a per-agent base budget by the tier multiplier and
// prices the total with a 70/30 input/output split against the default
// provider/model pair.
func (e *Estimator) EstimateTaskCost(query string, agents []string, parallelExecution bool, contextContent string) Estimate {
	agentCount := len(agents)
	if agentCount == 0 {
		agentCount = 1
	}

	complexity := assessComplexity(query, agentCount, parallelExecution)

	queryTokens := approximateTokens(query)
	contextTokens := approximateTokens(contextContent)
	promptTokens := queryTokens + contextTokens + e.systemPromptTokens

	basePerAgent := 2 * queryTokens
	if basePerAgent < 500 {
		basePerAgent = 500
	}

	totalTokens := promptTokens*agentCount +
		int(float64(basePerAgent*agentCount)*complexity.Multiplier())

	inputTokens := int(float64(totalTokens) * 0.7)
	outputTokens := totalTokens - inputTokens
	rate := e.lookupRate(e.defaultProvider, e.defaultModel)
	costUSD := rate.cost(inputTokens, outputTokens)

	parallelFactor := 1
	if parallelExecution {
		parallelFactor = agentCount
	}

	preview := query
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	reasoning := fmt.Sprintf(
		"query %q classified %s; %d agent(s), parallel factor %d; ~%d tokens at $%.4f via %s/%s",
		preview, complexity, agentCount, parallelFactor, totalTokens, costUSD,
		e.defaultProvider, e.defaultModel,
	)

	return Estimate{
		EstimatedTokens:  totalTokens,
		EstimatedCostUSD: costUSD,
		Complexity:       complexity,
		AgentCount:       agentCount,
		ParallelFactor:   parallelFactor,
		Confidence:       confidenceFor(complexity),
		Reasoning:        reasoning,
	}
}

// ShouldProceed is the advisory admission gate. Checks run in order and the
// first failing check wins: session ceiling, daily ceiling, then the single
// estimate against the emergency stop. The estimator does not itself block
// anything; callers are responsible for honoring the boolean.
func (e *Estimator) ShouldProceed(estimate Estimate, sessionID string) (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.emergencyStopped {
		return false, "emergency stop engaged: all task admission halted"
	}

	sessionCost := e.sessionCostLocked(sessionID)
	if sessionCost+estimate.EstimatedCostUSD > e.thresholds.SessionLimit {
		return false, fmt.Sprintf(
			"session cost $%.4f + estimate $%.4f exceeds session limit $%.2f",
			sessionCost, estimate.EstimatedCostUSD, e.thresholds.SessionLimit,
		)
	}

	dailyCost := e.dailyLocked(time.Now()).CostUSD
	if dailyCost+estimate.EstimatedCostUSD > e.thresholds.DailyLimit {
		return false, fmt.Sprintf(
			"daily cost $%.4f + estimate $%.4f exceeds daily limit $%.2f",
			dailyCost, estimate.EstimatedCostUSD, e.thresholds.DailyLimit,
		)
	}

	if estimate.EstimatedCostUSD > e.thresholds.EmergencyStop {
		return false, fmt.Sprintf(
			"single task estimate $%.4f exceeds emergency stop $%.2f",
			estimate.EstimatedCostUSD, e.thresholds.EmergencyStop,
		)
	}

	return true, fmt.Sprintf("estimated cost $%.4f within limits", estimate.EstimatedCostUSD)
}

// StartTracking opens a live usage record for a task. Calling it twice with
// the same task id silently overwrites the prior record; callers must never
// reuse task ids.
func (e *Estimator) StartTracking(taskID, sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active[taskID] = newUsage(taskID, sessionID)
	e.logger.Debug("cost tracking started", "task_id", taskID, "session_id", sessionID)
}

// RecordUsage accumulates one model call into the task's live record, the
// provider/model totals and the daily total, then re-checks thresholds.
// Unknown task ids log a warning and change nothing. Threshold breaches are
// logged, never returned: overruns are observable but non-fatal here.
func (e *Estimator) RecordUsage(taskID, provider, model string, inputTokens, outputTokens int, agentType string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	usage, ok := e.active[taskID]
	if !ok {
		e.logger.Warn("usage recorded for untracked task", "task_id", taskID, "provider", provider, "model", model)
		return
	}

	rate := e.lookupRate(provider, model)
	callTokens := inputTokens + outputTokens
	callCost := rate.cost(inputTokens, outputTokens)

	usage.TokensUsed += callTokens
	usage.CostUSD += callCost

	pb := usage.ProviderBreakdown[provider]
	pb.Tokens += callTokens
	pb.CostUSD += callCost
	usage.ProviderBreakdown[provider] = pb

	if agentType != "" {
		ab := usage.AgentBreakdown[agentType]
		ab.Tokens += callTokens
		ab.CostUSD += callCost
		usage.AgentBreakdown[agentType] = ab
	}

	pt := e.providerTotals[provider]
	pt.Tokens += callTokens
	pt.CostUSD += callCost
	e.providerTotals[provider] = pt

	mk := provider + "/" + model
	mt := e.modelTotals[mk]
	mt.Tokens += callTokens
	mt.CostUSD += callCost
	e.modelTotals[mk] = mt

	day := e.dailyLocked(time.Now())
	day.Tokens += callTokens
	day.CostUSD += callCost

	e.checkThresholdsLocked(usage.SessionID)
}

// EndTracking pops and finalizes the task's usage record, setting EndTime.
// Returns nil when the task was never tracked (or already ended). Once
// popped the record is invisible to UsageSummary; capture the return value
// if historical totals matter.
func (e *Estimator) EndTracking(taskID string) *Usage {
	e.mu.Lock()
	defer e.mu.Unlock()

	usage, ok := e.active[taskID]
	if !ok {
		return nil
	}
	delete(e.active, taskID)
	usage.EndTime = time.Now().UTC()

	if day, ok := e.daily[dayKey(usage.EndTime)]; ok {
		day.Tasks++
	}

	e.logger.Debug("cost tracking ended",
		"task_id", taskID, "tokens", usage.TokensUsed, "cost_usd", usage.CostUSD)
	return usage
}

// UsageSummary aggregates current active state and today's totals. When
// sessionID is non-empty the session figures cover only that session's
// active tasks.
func (e *Estimator) UsageSummary(sessionID string) Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Summary{
		ProviderTotals: make(map[string]Bucket, len(e.providerTotals)),
		ModelTotals:    make(map[string]Bucket, len(e.modelTotals)),
	}
	for _, usage := range e.active {
		if sessionID != "" && usage.SessionID != sessionID {
			continue
		}
		s.ActiveTasks++
		s.SessionTokens += usage.TokensUsed
		s.SessionCostUSD += usage.CostUSD
	}
	day := e.dailyLocked(time.Now())
	s.DailyTokens = day.Tokens
	s.DailyCostUSD = day.CostUSD
	for k, v := range e.providerTotals {
		s.ProviderTotals[k] = v
	}
	for k, v := range e.modelTotals {
		s.ModelTotals[k] = v
	}
	return s
}

// EmergencyStopped reports whether the emergency stop has engaged. Always
// false unless AbortOnEmergency was set.
func (e *Estimator) EmergencyStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emergencyStopped
}

// sessionCostLocked sums the cost of active tasks belonging to a session.
// Caller must hold e.mu.
func (e *Estimator) sessionCostLocked(sessionID string) float64 {
	var total float64
	for _, usage := range e.active {
		if usage.SessionID == sessionID {
			total += usage.CostUSD
		}
	}
	return total
}

// dailyLocked returns (creating if needed) the total for t's UTC day.
// Caller must hold e.mu.
func (e *Estimator) dailyLocked(t time.Time) *DailyTotal {
	key := dayKey(t)
	day, ok := e.daily[key]
	if !ok {
		day = &DailyTotal{Date: key}
		e.daily[key] = day
	}
	return day
}

// lookupRate resolves a provider/model pair, logging once per call on a miss.
func (e *Estimator) lookupRate(provider, model string) Rate {
	rate, ok := e.rates.Lookup(provider, model)
	if !ok {
		e.logger.Warn("no price configured, using fallback rate", "provider", provider, "model", model)
	}
	return rate
}

// checkThresholdsLocked logs warning/error diagnostics as cumulative spend
// crosses the configured ceilings and, when AbortOnEmergency is set, engages
// the emergency stop. It never aborts the recording path itself.
// Caller must hold e.mu.
func (e *Estimator) checkThresholdsLocked(sessionID string) {
	sessionCost := e.sessionCostLocked(sessionID)
	if sessionCost > e.thresholds.SessionLimit {
		e.logger.Error("session cost limit exceeded",
			"session_id", sessionID, "cost_usd", sessionCost, "limit_usd", e.thresholds.SessionLimit)
	} else if sessionCost > e.thresholds.SessionWarning {
		e.logger.Warn("session cost warning threshold crossed",
			"session_id", sessionID, "cost_usd", sessionCost, "warning_usd", e.thresholds.SessionWarning)
	}

	day := e.dailyLocked(time.Now())
	if day.CostUSD > e.thresholds.DailyLimit {
		e.logger.Error("daily cost limit exceeded",
			"date", day.Date, "cost_usd", day.CostUSD, "limit_usd", e.thresholds.DailyLimit)
	} else if day.CostUSD > e.thresholds.DailyWarning {
		e.logger.Warn("daily cost warning threshold crossed",
			"date", day.Date, "cost_usd", day.CostUSD, "warning_usd", e.thresholds.DailyWarning)
	}

	if day.CostUSD > e.thresholds.EmergencyStop {
		e.logger.Error("emergency stop threshold exceeded",
			"date", day.Date, "cost_usd", day.CostUSD, "emergency_usd", e.thresholds.EmergencyStop,
			"abort", e.abortOnEmergency)
		if e.abortOnEmergency {
			e.emergencyStopped = true
		}
	}
}
