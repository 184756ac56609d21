// Package runner coordinates task execution across the registered agents: it
// routes each ResearchAction by agent type, applies the pre-flight cost
// admission gate, brackets execution with live cost tracking and persists
// finalized usage records. Public methods are safe for concurrent use.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/ledger"
	"github.com/eunice-ai/eunice/logging"
)

// Agent is the surface the runner needs from an agent. *agent.BaseAgent and
// every concrete agent embedding it satisfy this.
type Agent interface {
	Name() string
	Type() core.AgentType
	Status() core.AgentStatus
	Initialize(ctx context.Context) error
	ProcessTask(ctx context.Context, task *core.ResearchAction) *core.AgentResponse
	Stop(ctx context.Context) error
}

// Options holds dependency + configuration overrides passed to New.
type Options struct {
	// Estimator is the shared cost service. Defaults to a fresh estimator
	// with stock thresholds.
	Estimator *cost.Estimator
	// Ledger, when set, receives every finalized usage record.
	Ledger *ledger.Ledger
	// Logger receives dispatch diagnostics.
	Logger logging.Logger
}

// Runner owns the agent registry and the dispatch path.
type Runner struct {
	mu     sync.RWMutex
	agents map[core.AgentType]Agent

	estimator *cost.Estimator
	ledger    *ledger.Ledger
	logger    logging.Logger
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Estimator == nil {
		opts.Estimator = cost.NewEstimator(func(o *cost.Options) { o.Logger = opts.Logger })
	}

	return &Runner{
		agents:    make(map[core.AgentType]Agent),
		estimator: opts.Estimator,
		ledger:    opts.Ledger,
		logger:    opts.Logger,
	}
}

// Estimator exposes the shared cost service so callers can request
// projections and summaries directly.
func (r *Runner) Estimator() *cost.Estimator { return r.estimator }

// Register adds an agent to the registry. One agent per type.
func (r *Runner) Register(a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[a.Type()]; ok {
		return fmt.Errorf("agent type %q already registered", a.Type())
	}
	r.agents[a.Type()] = a
	return nil
}

// StartAll initializes every registered agent. The first failure aborts and
// is returned; agents already initialized stay up.
func (r *Runner) StartAll(ctx context.Context) error {
	r.mu.RLock()
	agents := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, a)
	}
	r.mu.RUnlock()

	for _, a := range agents {
		if err := a.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize agent %s: %w", a.Name(), err)
		}
	}
	return nil
}

// StopAll stops every registered agent, joining any shutdown errors.
func (r *Runner) StopAll(ctx context.Context) error {
	r.mu.RLock()
	agents := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, a)
	}
	r.mu.RUnlock()

	var errs []error
	for _, a := range agents {
		if err := a.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop agent %s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Dispatch routes one task to the agent registered for its type, applying
// the cost admission gate first and bracketing execution with usage
// tracking. Cost rejections and agent-side rejections come back as failed
// responses, never as errors; the error return covers routing and
// persistence problems only.
func (r *Runner) Dispatch(ctx context.Context, sessionID string, task *core.ResearchAction) (*core.AgentResponse, error) {
	r.mu.RLock()
	a, ok := r.agents[task.AgentType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no agent registered for type %q", task.AgentType)
	}

	estimate := r.estimator.EstimateTaskCost(taskText(task), []string{string(task.AgentType)}, false, "")
	if proceed, reason := r.estimator.ShouldProceed(estimate, sessionID); !proceed {
		r.logger.Warn("task rejected by cost admission",
			"task_id", task.TaskID, "session_id", sessionID, "reason", reason)
		return core.NewFailedResponse(task, "cost admission rejected: "+reason), nil
	}

	r.estimator.StartTracking(task.TaskID, sessionID)
	resp := a.ProcessTask(ctx, task)
	usage := r.estimator.EndTracking(task.TaskID)

	if usage != nil && r.ledger != nil {
		if err := r.ledger.Append(ctx, usage); err != nil {
			// Accounting persistence must not fail the task itself.
			r.logger.Error("persist usage record", "task_id", task.TaskID, "error", err.Error())
		}
	}

	return resp, nil
}

// taskText derives the text the estimator scores from the payload fields the
// built-in agents use, falling back to the action name.
func taskText(task *core.ResearchAction) string {
	for _, key := range []string{"query", "goal", "description", "question", "step", "section", "study"} {
		if s, ok := task.Payload[key].(string); ok && s != "" {
			return s
		}
	}
	return string(task.Action)
}
