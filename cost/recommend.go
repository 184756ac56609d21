package cost

import "fmt"

// Recommendation is one rule-based cost reduction suggestion. The projected
// costs use heuristic multipliers, not measurements; treat them as advisory
// output for operators, never as decisions.
type Recommendation struct {
	Kind             string  `json:"kind"`
	Message          string  `json:"message"`
	ProjectedCostUSD float64 `json:"projected_cost_usd"`
}

// Recommendation kinds emitted by Recommendations.
const (
	RecommendDecompose   = "decompose_task"
	RecommendSingleAgent = "single_agent"
	RecommendSequential  = "sequential_execution"
	RecommendReuseMemory = "reuse_memory"
)

// Heuristic cost multipliers applied when projecting alternatives.
const (
	singleAgentCostFactor = 0.4
	sequentialCostFactor  = 0.7
)

// Recommendations derives advisory cost reduction suggestions from an
// estimate: decomposition above $1, a single-agent alternative above two
// agents, sequential execution when the task would fan out in parallel, and
// memory reuse for high-complexity work.
func (e *Estimator) Recommendations(estimate Estimate) []Recommendation {
	var recs []Recommendation

	if estimate.EstimatedCostUSD > 1.0 {
		recs = append(recs, Recommendation{
			Kind: RecommendDecompose,
			Message: fmt.Sprintf(
				"estimated cost $%.4f is high; decompose into smaller sequential tasks",
				estimate.EstimatedCostUSD),
			ProjectedCostUSD: estimate.EstimatedCostUSD,
		})
	}

	if estimate.AgentCount > 2 {
		recs = append(recs, Recommendation{
			Kind: RecommendSingleAgent,
			Message: fmt.Sprintf(
				"%d agents requested; a single-agent pass may suffice",
				estimate.AgentCount),
			ProjectedCostUSD: estimate.EstimatedCostUSD * singleAgentCostFactor,
		})
	}

	if estimate.ParallelFactor > 1 {
		recs = append(recs, Recommendation{
			Kind:             RecommendSequential,
			Message:          "parallel execution multiplies context duplication; run agents sequentially",
			ProjectedCostUSD: estimate.EstimatedCostUSD * sequentialCostFactor,
		})
	}

	if estimate.Complexity >= ComplexityHigh {
		recs = append(recs, Recommendation{
			Kind:             RecommendReuseMemory,
			Message:          "high complexity task; query the memory agent for prior findings before new searches",
			ProjectedCostUSD: estimate.EstimatedCostUSD,
		})
	}

	return recs
}
