package agent

import (
	"context"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/model"
)

// WriterAgent drafts manuscript sections and normalizes citation lists.
type WriterAgent struct {
	*BaseAgent
	model     model.Model
	estimator *cost.Estimator
}

// NewWriterAgent constructs a writer agent bound to a model and the shared
// cost estimator.
func NewWriterAgent(m model.Model, estimator *cost.Estimator, optFns ...func(o *Options)) *WriterAgent {
	a := &WriterAgent{
		BaseAgent: NewBaseAgent("writer", core.AgentTypeWriter,
			[]core.Action{core.ActionDraftSection, core.ActionFormatCitations}, optFns...),
		model:     m,
		estimator: estimator,
	}
	a.RegisterHandler(core.ActionDraftSection, a.draftSection)
	a.RegisterHandler(core.ActionFormatCitations, a.formatCitations)
	return a
}

func (a *WriterAgent) draftSection(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	section, err := payloadString(task, "section")
	if err != nil {
		return nil, err
	}
	notes, _ := task.Payload["notes"].(string)

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"You are an academic writer. Draft the requested manuscript section from the notes, in formal register.",
		"Section: "+section+"\n\nNotes:\n"+notes)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"section":     section,
		"draft":       resp.Text,
		"tokens_used": resp.Usage.TotalTokens,
	}, nil
}

func (a *WriterAgent) formatCitations(ctx context.Context, task *core.ResearchAction) (map[string]any, error) {
	citations, err := payloadString(task, "citations")
	if err != nil {
		return nil, err
	}
	style, _ := task.Payload["style"].(string)
	if style == "" {
		style = "vancouver"
	}

	resp, err := generateTracked(ctx, a.model, a.estimator, task,
		"Reformat the citation list into the requested style, one citation per line, preserving order.",
		"Style: "+style+"\n\n"+citations)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"style":       style,
		"formatted":   resp.Text,
		"tokens_used": resp.Usage.TotalTokens,
	}, nil
}
