package agent

import (
	"context"
	"strings"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/model"
)

// PlanningAgent turns research goals into step plans. Before producing a
// plan it runs the pre-flight cost projection for the goal, so every plan
// carries its own estimated spend and the estimator's advisory
// recommendations.
type PlanningAgent struct {
	*BaseAgent
	model     model.Model
	estimator *cost.Estimator
}

// NewPlanningAgent constructs a planning agent bound to a model and the
// shared cost estimator.
func NewPlanningAgent(m model.Model, estimator *cost.Estimator, optFns ...func(o *Options)) *PlanningAgent {
	a := &PlanningAgent{
		BaseAgent: NewBaseAgent("planning", core.AgentTypePlanning,
			[]core.Action{core.ActionCreatePlan, core.ActionDecomposeTask}, optFns...),
		model:     m,
		estimator: estimator,
	}
	a.RegisterHandler(core.ActionCreatePlan, a.createPlan)
	a.RegisterHandler(core.ActionDecomposeTask, a.decomposeTask)
	return a
}

func (a *PlanningAgent) createPlan(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	goal, err := payloadString(task, "goal")
	if err != nil {
		return nil, err
	}

	result := map[string]any{"goal": goal}
	if a.estimator != nil {
		agents, _ := task.Payload["agents"].([]string)
		parallel, _ := task.Payload["parallel"].(bool)
		estimate := a.estimator.EstimateTaskCost(goal, agents, parallel, "")
		result["estimate"] = estimate
		result["recommendations"] = a.estimator.Recommendations(estimate)
	}

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"You are a research planner. Produce a numbered step plan, one step per line, naming the agent responsible for each step.",
		goal)
	if err != nil {
		return nil, err
	}

	result["plan"] = strings.Split(strings.TrimSpace(resp.Text), "\n")
	result["tokens_used"] = resp.Usage.TotalTokens
	return result, nil
}

func (a *PlanningAgent) decomposeTask(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	description, err := payloadString(task, "description")
	if err != nil {
		return nil, err
	}

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"Decompose the task into independent subtasks that can run concurrently. One subtask per line.",
		description)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"subtasks":    strings.Split(strings.TrimSpace(resp.Text), "\n"),
		"tokens_used": resp.Usage.TotalTokens,
	}, nil
}
