// Package eunice provides a high-level façade over the runner, the cost
// estimator and the built-in research agents, enabling rapid construction of
// cost-controlled research automation. Most applications interact with this
// package by:
//  1. Creating a Eunice via New() (optionally overriding config, model, logger)
//  2. Starting it, which initializes every built-in agent
//  3. Submitting ResearchActions and reading the structured responses
//
// The façade delegates routing and admission to runner.Runner while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing: a mock model and no persistence. Production deployments supply a
// real provider adapter and a ledger path.
package eunice

import (
	"context"
	"fmt"

	"github.com/eunice-ai/eunice/agent"
	"github.com/eunice-ai/eunice/config"
	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/cost"
	"github.com/eunice-ai/eunice/ledger"
	"github.com/eunice-ai/eunice/logging"
	"github.com/eunice-ai/eunice/model"
	"github.com/eunice-ai/eunice/runner"
)

// Options configures the Eunice instance.
type Options struct {
	// Config supplies thresholds, pricing and agent settings. Defaults to
	// config.Default().
	Config *config.Config
	// Model is the LLM the model-backed agents call. Defaults to a mock
	// model so zero-config runs never spend real tokens.
	Model model.Model
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Eunice is the high-level façade aggregating the runner and its services.
type Eunice struct {
	cfg       *config.Config
	estimator *cost.Estimator
	runner    *runner.Runner
	ledger    *ledger.Ledger
	logger    logging.Logger
}

// New creates a Eunice instance with optional overrides and registers the
// six built-in agents.
func New(optFns ...func(o *Options)) (*Eunice, error) {
	opts := Options{
		Config: config.Default(),
		Model:  model.NewMockModel("mock-model", "mock"),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	estimator := cost.NewEstimator(func(o *cost.Options) {
		o.Rates = opts.Config.RateTable()
		o.Thresholds = opts.Config.CostThresholds
		o.DefaultProvider = opts.Config.ResearchManager.Provider
		o.DefaultModel = opts.Config.ResearchManager.Model
		o.AbortOnEmergency = opts.Config.AbortOnEmergency
		o.Logger = opts.Logger
	})

	var ldg *ledger.Ledger
	if opts.Config.LedgerPath != "" {
		var err error
		ldg, err = ledger.Open(opts.Config.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("open usage ledger: %w", err)
		}
	}

	r := runner.New(func(o *runner.Options) {
		o.Estimator = estimator
		o.Ledger = ldg
		o.Logger = opts.Logger
	})

	agentOpts := func(o *agent.Options) {
		o.MaxConcurrentTasks = opts.Config.Agents.MaxConcurrentTasks
		o.Logger = opts.Logger
	}
	agents := []runner.Agent{
		agent.NewLiteratureAgent(opts.Model, estimator, agentOpts),
		agent.NewPlanningAgent(opts.Model, estimator, agentOpts),
		agent.NewExecutorAgent(agentOpts),
		agent.NewMemoryAgent(agentOpts),
		agent.NewReviewAgent(opts.Model, estimator, agentOpts),
		agent.NewWriterAgent(opts.Model, estimator, agentOpts),
	}
	for _, a := range agents {
		if err := r.Register(a); err != nil {
			return nil, fmt.Errorf("register agent %s: %w", a.Name(), err)
		}
	}

	return &Eunice{
		cfg:       opts.Config,
		estimator: estimator,
		runner:    r,
		ledger:    ldg,
		logger:    opts.Logger,
	}, nil
}

// Start initializes every registered agent.
func (e *Eunice) Start(ctx context.Context) error { return e.runner.StartAll(ctx) }

// Stop shuts every agent down and closes the ledger if one is open.
func (e *Eunice) Stop(ctx context.Context) error {
	err := e.runner.StopAll(ctx)
	if e.ledger != nil {
		if cerr := e.ledger.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Submit dispatches one task within a session and returns its structured
// response.
func (e *Eunice) Submit(ctx context.Context, sessionID string, task *core.ResearchAction) (*core.AgentResponse, error) {
	return e.runner.Dispatch(ctx, sessionID, task)
}

// Estimate returns the pre-flight cost projection for a prospective task.
func (e *Eunice) Estimate(query string, agents []string, parallel bool) cost.Estimate {
	return e.estimator.EstimateTaskCost(query, agents, parallel, "")
}

// Recommendations derives the estimator's advisory suggestions for an estimate.
func (e *Eunice) Recommendations(estimate cost.Estimate) []cost.Recommendation {
	return e.estimator.Recommendations(estimate)
}

// UsageSummary reports current accounting state, optionally session-scoped.
func (e *Eunice) UsageSummary(sessionID string) cost.Summary {
	return e.estimator.UsageSummary(sessionID)
}
