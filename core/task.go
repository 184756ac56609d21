package core

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies one operation an agent knows how to perform. Each agent
// declares a closed set of supported actions and registers a handler per
// action, so an unknown action is rejected at admission rather than deep
// inside domain logic.
type Action string

// Actions supported by the built-in agents.
const (
	ActionSearchLiterature Action = "search_literature"
	ActionScreenAbstracts  Action = "screen_abstracts"
	ActionCreatePlan       Action = "create_plan"
	ActionDecomposeTask    Action = "decompose_task"
	ActionExecuteStep      Action = "execute_step"
	ActionRunAnalysis      Action = "run_analysis"
	ActionStoreFinding     Action = "store_finding"
	ActionRecallFindings   Action = "recall_findings"
	ActionConductReview    Action = "conduct_review"
	ActionExtractData      Action = "extract_data"
	ActionDraftSection     Action = "draft_section"
	ActionFormatCitations  Action = "format_citations"
)

// AgentType categorizes an agent implementation and is used by the runner to
// route tasks. The value travels on every envelope.
type AgentType string

// Agent types built into Eunice.
const (
	AgentTypeLiterature AgentType = "literature"
	AgentTypePlanning   AgentType = "planning"
	AgentTypeExecutor   AgentType = "executor"
	AgentTypeMemory     AgentType = "memory"
	AgentTypeReview     AgentType = "systematic_review"
	AgentTypeWriter     AgentType = "writer"
)

// TaskStatus is the terminal disposition of a processed task.
type TaskStatus string

const (
	// TaskCompleted indicates the handler finished and produced a result.
	TaskCompleted TaskStatus = "completed"
	// TaskFailed indicates admission was rejected or the handler returned an error.
	TaskFailed TaskStatus = "failed"
	// TaskCancelled indicates the agent shut down while the task was active.
	TaskCancelled TaskStatus = "cancelled"
)

// ResearchAction is the task envelope delivered to an agent. Payload is
// opaque to the lifecycle machinery; only the handler selected by Action
// interprets it.
type ResearchAction struct {
	TaskID    string         `json:"task_id"`
	ContextID string         `json:"context_id"`
	AgentType AgentType      `json:"agent_type"`
	Action    Action         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewResearchAction constructs a task envelope with a generated TaskID.
func NewResearchAction(contextID string, agentType AgentType, action Action, payload map[string]any) *ResearchAction {
	return &ResearchAction{
		TaskID:    NewID(),
		ContextID: contextID,
		AgentType: agentType,
		Action:    action,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// AgentResponse is the result envelope produced for every processed task,
// successful or not. Result is populated only for completed tasks, Error only
// for failed ones.
type AgentResponse struct {
	TaskID    string         `json:"task_id"`
	ContextID string         `json:"context_id"`
	AgentType AgentType      `json:"agent_type"`
	Status    TaskStatus     `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"duration,omitempty"`
}

// NewCompletedResponse wraps a handler result in a completed envelope.
func NewCompletedResponse(task *ResearchAction, result map[string]any) *AgentResponse {
	return &AgentResponse{
		TaskID:    task.TaskID,
		ContextID: task.ContextID,
		AgentType: task.AgentType,
		Status:    TaskCompleted,
		Result:    result,
	}
}

// NewFailedResponse records a structured failure for a task. The reason is
// surfaced verbatim to callers; it must not leak internal state.
func NewFailedResponse(task *ResearchAction, reason string) *AgentResponse {
	return &AgentResponse{
		TaskID:    task.TaskID,
		ContextID: task.ContextID,
		AgentType: task.AgentType,
		Status:    TaskFailed,
		Error:     reason,
	}
}

// NewCancelledResponse records a task abandoned during shutdown.
func NewCancelledResponse(task *ResearchAction) *AgentResponse {
	return &AgentResponse{
		TaskID:    task.TaskID,
		ContextID: task.ContextID,
		AgentType: task.AgentType,
		Status:    TaskCancelled,
		Error:     "agent shutting down",
	}
}

// NewID generates a unique identifier for tasks, sessions and contexts.
func NewID() string { return uuid.NewString() }
