package agent

import (
	"context"
	"fmt"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/model"
)

// generateTracked runs one model call for a task and records the reported
// token usage against the task's live cost record. Recording is best-effort:
// if the runner never started tracking for this task id the estimator logs a
// warning and the result is still returned.
func generateTracked(
	ctx context.Context,
	m model.Model,
	estimator *cost.Estimator,
	task *core.ResearchAction,
	instructions, prompt string,
) (*model.Response, error) {
	if m == nil {
		return nil, fmt.Errorf("no model configured")
	}

	resp, err := m.Generate(ctx, model.Request{Instructions: instructions, Prompt: prompt})
	if err != nil {
		return nil, err
	}

	if estimator != nil {
		info := m.Info()
		estimator.RecordUsage(
			task.TaskID,
			info.Provider,
			info.Name,
			resp.Usage.PromptTokens,
			resp.Usage.CompletionTokens,
			string(task.AgentType),
		)
	}
	return resp, nil
}

// payloadString extracts a required string field from a task payload.
func payloadString(task *core.ResearchAction, key string) (string, error) {
	v, ok := task.Payload[key]
	if !ok {
		return "", fmt.Errorf("payload missing %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("payload field %q must be a non-empty string", key)
	}
	return s, nil
}
