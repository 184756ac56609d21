package testutil

import (
	"time"

	"github.com/eunice-ai/eunice/core"
)

// TaskBuilder provides a fluent helper for constructing task envelopes in tests.
// Example:
//
//	task := NewTaskBuilder().Agent(core.AgentTypeExecutor).Action(core.ActionExecuteStep).Payload("step", "x").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type TaskBuilder struct {
	taskID    string
	contextID string
	agentType core.AgentType
	action    core.Action
	payload   map[string]any
}

// NewTaskBuilder creates a builder with a generated task id and context id.
func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{
		taskID:    core.NewID(),
		contextID: core.NewID(),
		agentType: core.AgentTypeExecutor,
		action:    core.ActionExecuteStep,
		payload:   map[string]any{},
	}
}

// ID overrides the auto-generated task ID (chainable). Use where determinism matters.
func (b *TaskBuilder) ID(id string) *TaskBuilder { b.taskID = id; return b }

// Context sets the context (session) id for the task (chainable).
func (b *TaskBuilder) Context(id string) *TaskBuilder { b.contextID = id; return b }

// Agent sets the target agent type (chainable).
func (b *TaskBuilder) Agent(t core.AgentType) *TaskBuilder { b.agentType = t; return b }

// Action sets the requested action (chainable).
func (b *TaskBuilder) Action(a core.Action) *TaskBuilder { b.action = a; return b }

// Payload sets one payload field (chainable).
func (b *TaskBuilder) Payload(key string, value any) *TaskBuilder {
	b.payload[key] = value
	return b
}

// Build materializes the envelope.
func (b *TaskBuilder) Build() *core.ResearchAction {
	return &core.ResearchAction{
		TaskID:    b.taskID,
		ContextID: b.contextID,
		AgentType: b.agentType,
		Action:    b.action,
		Payload:   b.payload,
		CreatedAt: time.Now().UTC(),
	}
}
