package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/eunice-ai/eunice/core"
)

// ExecutorAgent carries out plan steps that need no model call: bookkeeping,
// timed waits, structured step acknowledgement. It is deliberately the one
// built-in agent with no token spend, which makes it useful for exercising
// the lifecycle machinery in isolation.
type ExecutorAgent struct {
	*BaseAgent
}

// NewExecutorAgent constructs an executor agent.
func NewExecutorAgent(optFns ...func(o *Options)) *ExecutorAgent {
	a := &ExecutorAgent{
		BaseAgent: NewBaseAgent("executor", core.AgentTypeExecutor,
			[]core.Action{core.ActionExecuteStep, core.ActionRunAnalysis}, optFns...),
	}
	a.RegisterHandler(core.ActionExecuteStep, a.executeStep)
	a.RegisterHandler(core.ActionRunAnalysis, a.runAnalysis)
	return a
}

func (a *ExecutorAgent) executeStep(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	step, err := payloadString(task, "step")
	if err != nil {
		return nil, err
	}

	// Honor an optional simulated duration so tests and examples can model
	// long-running steps that must respect cancellation.
	if d, ok := task.Payload["duration_ms"].(float64); ok && d > 0 {
		select {
		case <-time.After(time.Duration(d) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return map[string]any{
		"step":        step,
		"executed_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (a *ExecutorAgent) runAnalysis(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	script, err := payloadString(task, "script")
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Statistical analysis runs out of process (R, external tooling); here we
	// validate and record the request only.
	if len(script) > 100_000 {
		return nil, fmt.Errorf("analysis script too large (%d bytes)", len(script))
	}
	return map[string]any{
		"script_bytes": len(script),
		"queued":       true,
	}, nil
}
