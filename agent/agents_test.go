package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/internal/testutil"
	"github.com/eunice-ai/eunice/model"
)

func TestLiteratureAgentRecordsUsage(t *testing.T) {
	m := model.NewMockModel("mock-model", "mock")
	estimator := cost.NewEstimator()
	a := NewLiteratureAgent(m, estimator)
	require.NoError(t, a.Initialize(context.Background()))

	task := testutil.NewTaskBuilder().
		Agent(core.AgentTypeLiterature).
		Action(core.ActionSearchLiterature).
		Payload("query", "effects of intermittent fasting on cognition").
		Build()

	estimator.StartTracking(task.TaskID, "session-a")
	resp := a.ProcessTask(context.Background(), task)
	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.NotEmpty(t, resp.Result["search_strings"])

	usage := estimator.EndTracking(task.TaskID)
	require.NotNil(t, usage)
	assert.Positive(t, usage.TokensUsed)
	assert.Positive(t, usage.AgentBreakdown[string(core.AgentTypeLiterature)].Tokens)
	assert.Positive(t, usage.ProviderBreakdown["mock"].Tokens)
}

func TestLiteratureAgentMissingQuery(t *testing.T) {
	a := NewLiteratureAgent(model.NewMockModel("mock-model", "mock"), nil)
	require.NoError(t, a.Initialize(context.Background()))

	task := testutil.NewTaskBuilder().
		Agent(core.AgentTypeLiterature).
		Action(core.ActionSearchLiterature).
		Build()
	resp := a.ProcessTask(context.Background(), task)

	assert.Equal(t, core.TaskFailed, resp.Status)
	assert.Contains(t, resp.Error, `payload missing "query"`)
	assert.Equal(t, core.StatusReady, a.Status())
}

func TestPlanningAgentAttachesEstimate(t *testing.T) {
	m := model.NewMockModel("mock-model", "mock")
	m.AddResponse("map the evidence on statin use", "1. literature: search\n2. writer: draft")
	estimator := cost.NewEstimator()
	a := NewPlanningAgent(m, estimator)
	require.NoError(t, a.Initialize(context.Background()))

	task := testutil.NewTaskBuilder().
		Agent(core.AgentTypePlanning).
		Action(core.ActionCreatePlan).
		Payload("goal", "map the evidence on statin use").
		Build()

	estimator.StartTracking(task.TaskID, "session-a")
	resp := a.ProcessTask(context.Background(), task)
	require.Equal(t, core.TaskCompleted, resp.Status)

	estimate, ok := resp.Result["estimate"].(cost.Estimate)
	require.True(t, ok)
	assert.Positive(t, estimate.EstimatedTokens)
	assert.Len(t, resp.Result["plan"], 2)
}

func TestMemoryAgentStoreAndRecall(t *testing.T) {
	a := NewMemoryAgent()
	require.NoError(t, a.Initialize(context.Background()))
	contextID := core.NewID()

	store := testutil.NewTaskBuilder().
		Context(contextID).
		Agent(core.AgentTypeMemory).
		Action(core.ActionStoreFinding).
		Payload("content", "statins reduce LDL cholesterol by ~30%").
		Build()
	resp := a.ProcessTask(context.Background(), store)
	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.NotEmpty(t, resp.Result["finding_id"])

	recall := testutil.NewTaskBuilder().
		Context(contextID).
		Agent(core.AgentTypeMemory).
		Action(core.ActionRecallFindings).
		Payload("query", "ldl").
		Build()
	resp = a.ProcessTask(context.Background(), recall)
	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.Equal(t, 1, resp.Result["count"])
}

func TestMemoryAgentRecallScopedToContext(t *testing.T) {
	a := NewMemoryAgent()
	require.NoError(t, a.Initialize(context.Background()))

	store := testutil.NewTaskBuilder().
		Agent(core.AgentTypeMemory).
		Action(core.ActionStoreFinding).
		Payload("content", "finding in another session").
		Build()
	require.Equal(t, core.TaskCompleted, a.ProcessTask(context.Background(), store).Status)

	recall := testutil.NewTaskBuilder().
		Agent(core.AgentTypeMemory).
		Action(core.ActionRecallFindings).
		Build()
	resp := a.ProcessTask(context.Background(), recall)
	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.Equal(t, 0, resp.Result["count"])
}

func TestExecutorAgentStep(t *testing.T) {
	a := NewExecutorAgent()
	require.NoError(t, a.Initialize(context.Background()))

	task := testutil.NewTaskBuilder().
		Action(core.ActionExecuteStep).
		Payload("step", "export screening results").
		Build()
	resp := a.ProcessTask(context.Background(), task)

	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.Equal(t, "export screening results", resp.Result["step"])
}

func TestWriterAgentDefaultsCitationStyle(t *testing.T) {
	a := NewWriterAgent(model.NewMockModel("mock-model", "mock"), nil)
	require.NoError(t, a.Initialize(context.Background()))

	task := testutil.NewTaskBuilder().
		Agent(core.AgentTypeWriter).
		Action(core.ActionFormatCitations).
		Payload("citations", "Smith J. et al. 2021").
		Build()
	resp := a.ProcessTask(context.Background(), task)

	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.Equal(t, "vancouver", resp.Result["style"])
}

func TestReviewAgentExtractData(t *testing.T) {
	a := NewReviewAgent(model.NewMockModel("mock-model", "mock"), nil)
	require.NoError(t, a.Initialize(context.Background()))

	task := testutil.NewTaskBuilder().
		Agent(core.AgentTypeReview).
		Action(core.ActionExtractData).
		Payload("study", "RCT of 400 patients comparing drug A to placebo").
		Build()
	resp := a.ProcessTask(context.Background(), task)

	require.Equal(t, core.TaskCompleted, resp.Status)
	assert.NotEmpty(t, resp.Result["extraction"])
}
