package agent

import (
	"context"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/model"
)

// ReviewAgent runs the systematic-review stages: structured data extraction
// from included studies and the review synthesis itself.
type ReviewAgent struct {
	*BaseAgent
	model     model.Model
	estimator *cost.Estimator
}

// NewReviewAgent constructs a systematic-review agent bound to a model and
// the shared cost estimator.
func NewReviewAgent(m model.Model, estimator *cost.Estimator, optFns ...func(o *Options)) *ReviewAgent {
	a := &ReviewAgent{
		BaseAgent: NewBaseAgent("systematic_review", core.AgentTypeReview,
			[]core.Action{core.ActionConductReview, core.ActionExtractData}, optFns...),
		model:     m,
		estimator: estimator,
	}
	a.RegisterHandler(core.ActionConductReview, a.conductReview)
	a.RegisterHandler(core.ActionExtractData, a.extractData)
	return a
}

func (a *ReviewAgent) conductReview(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	question, err := payloadString(task, "question")
	if err != nil {
		return nil, err
	}
	studies, _ := task.Payload["studies"].(string)

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"Synthesize the included studies into a systematic review summary: findings, quality of evidence, limitations.",
		"Review question: "+question+"\n\nIncluded studies:\n"+studies)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"question":    question,
		"synthesis":   resp.Text,
		"tokens_used": resp.Usage.TotalTokens,
	}, nil
}

func (a *ReviewAgent) extractData(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	study, err := payloadString(task, "study")
	if err != nil {
		return nil, err
	}

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"Extract population, intervention, comparator, outcomes and effect sizes from the study text. One field per line.",
		study)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"extraction":  resp.Text,
		"tokens_used": resp.Usage.TotalTokens,
	}, nil
}
