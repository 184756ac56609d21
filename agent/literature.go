package agent

import (
	"context"
	"strings"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/model"
)

// LiteratureAgent searches and screens scholarly literature. Its handlers are
// thin glue over the model: search query expansion and abstract screening are
// single prompts whose token usage flows into the cost estimator.
type LiteratureAgent struct {
	*BaseAgent
	model     model.Model
	estimator *cost.Estimator
}

// NewLiteratureAgent constructs a literature agent bound to a model and the
// shared cost estimator.
func NewLiteratureAgent(m model.Model, estimator *cost.Estimator, optFns ...func(o *Options)) *LiteratureAgent {
	a := &LiteratureAgent{
		BaseAgent: NewBaseAgent("literature", core.AgentTypeLiterature,
			[]core.Action{core.ActionSearchLiterature, core.ActionScreenAbstracts}, optFns...),
		model:     m,
		estimator: estimator,
	}
	a.RegisterHandler(core.ActionSearchLiterature, a.searchLiterature)
	a.RegisterHandler(core.ActionScreenAbstracts, a.screenAbstracts)
	return a
}

func (a *LiteratureAgent) searchLiterature(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	query, err := payloadString(task, "query")
	if err != nil {
		return nil, err
	}

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"You are a research librarian. Expand the query into precise boolean search strings for PubMed and arXiv, one per line.",
		query)
	if err != nil {
		return nil, err
	}

	searches := strings.Split(strings.TrimSpace(resp.Text), "\n")
	return map[string]any{
		"query":          query,
		"search_strings": searches,
		"tokens_used":    resp.Usage.TotalTokens,
	}, nil
}

func (a *LiteratureAgent) screenAbstracts(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	abstracts, err := payloadString(task, "abstracts")
	if err != nil {
		return nil, err
	}
	criteria, _ := task.Payload["criteria"].(string)

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"Screen each abstract against the inclusion criteria. Answer include/exclude with a one-line reason per abstract.",
		"Criteria: "+criteria+"\n\nAbstracts:\n"+abstracts)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"screening":   resp.Text,
		"tokens_used": resp.Usage.TotalTokens,
	}, nil
}
