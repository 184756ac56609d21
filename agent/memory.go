package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/eunice-ai/eunice/core"
)

// Finding is one stored research finding, scoped to the context (session)
// that produced it.
type Finding struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Tags    map[string]any `json:"tags,omitempty"`
}

// findingStore is a naive process-local store: append-only findings per
// context with linear substring search. Suitable for tests and single-node
// runs; swap for a persistent or semantic index for production retrieval.
type findingStore struct {
	mu       sync.RWMutex
	findings map[string][]Finding // contextID -> findings
}

func newFindingStore() *findingStore {
	return &findingStore{findings: make(map[string][]Finding)}
}

func (s *findingStore) put(contextID string, f Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[contextID] = append(s.findings[contextID], f)
}

func (s *findingStore) search(contextID, query string, limit int) []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Finding
	for _, f := range s.findings[contextID] {
		if limit > 0 && len(out) >= limit {
			break
		}
		if query == "" || strings.Contains(strings.ToLower(f.Content), strings.ToLower(query)) {
			out = append(out, f)
		}
	}
	return out
}

// MemoryAgent stores and recalls findings so later tasks can reuse prior
// work instead of re-spending tokens; the cost estimator's high-complexity
// recommendation points here.
type MemoryAgent struct {
	*BaseAgent
	store *findingStore
}

// NewMemoryAgent constructs a memory agent with an empty in-process store.
func NewMemoryAgent(optFns ...func(o *Options)) *MemoryAgent {
	a := &MemoryAgent{
		BaseAgent: NewBaseAgent("memory", core.AgentTypeMemory,
			[]core.Action{core.ActionStoreFinding, core.ActionRecallFindings}, optFns...),
		store: newFindingStore(),
	}
	a.RegisterHandler(core.ActionStoreFinding, a.storeFinding)
	a.RegisterHandler(core.ActionRecallFindings, a.recallFindings)
	return a
}

func (a *MemoryAgent) storeFinding(_ context.Context, task *core.ResearchAction) (map[string]any, error) {
	content, err := payloadString(task, "content")
	if err != nil {
		return nil, err
	}
	tags, _ := task.Payload["tags"].(map[string]any)

	f := Finding{ID: core.NewID(), Content: content, Tags: tags}
	a.store.put(task.ContextID, f)

	return map[string]any{"finding_id": f.ID}, nil
}

func (a *MemoryAgent) recallFindings(_ context.Context, task *core.ResearchAction) (map[string]any, error) {
	query, _ := task.Payload["query"].(string)
	limit := 10
	if l, ok := task.Payload["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	found := a.store.search(task.ContextID, query, limit)
	return map[string]any{
		"findings": found,
		"count":    len(found),
	}, nil
}
