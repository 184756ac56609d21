package cost

import "strings"

// Complexity is the ordinal tier describing how demanding a task is expected
// to be. It scales the projected token budget per agent.
type Complexity int

const (
	// ComplexityLow covers simple single-step queries.
	ComplexityLow Complexity = iota
	// ComplexityMedium covers multi-step analysis or comparison work.
	ComplexityMedium
	// ComplexityHigh covers systematic reviews, meta-analyses and other
	// long-running multi-agent efforts.
	ComplexityHigh
	// ComplexityCritical is reserved for emergency-stop reporting. The
	// classifier never produces it; the tier exists so its multiplier and
	// reporting semantics stay defined.
	ComplexityCritical
)

// String returns the lowercase wire representation of the tier.
func (c Complexity) String() string {
	switch c {
	case ComplexityLow:
		return "low"
	case ComplexityMedium:
		return "medium"
	case ComplexityHigh:
		return "high"
	case ComplexityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Multiplier returns the per-agent token budget multiplier for the tier.
func (c Complexity) Multiplier() float64 {
	switch c {
	case ComplexityMedium:
		return 2.5
	case ComplexityHigh:
		return 5.0
	case ComplexityCritical:
		return 10.0
	default:
		return 1.0
	}
}

// Estimate is the projected cost for one prospective task. It is ephemeral:
// produced per planning call and never stored by the estimator.
type Estimate struct {
	EstimatedTokens  int        `json:"estimated_tokens"`
	EstimatedCostUSD float64    `json:"estimated_cost_usd"`
	Complexity       Complexity `json:"task_complexity"`
	AgentCount       int        `json:"agent_count"`
	ParallelFactor   int        `json:"parallel_factor"`
	Confidence       float64    `json:"confidence"`
	Reasoning        string     `json:"reasoning"`
}

// Keyword sets consulted by the complexity classifier. Matching is
// case-insensitive substring containment.
var (
	highComplexityKeywords = []string{
		"comprehensive",
		"systematic review",
		"meta-analysis",
		"statistical analysis",
		"full-text",
		"evidence synthesis",
	}
	mediumComplexityKeywords = []string{
		"analyze",
		"compare",
		"evaluate",
		"summarize",
		"extract",
		"screen",
	}
)

// assessComplexity scores a task from its query text, agent fan-out and
// parallelism. Score >= 6 is High, >= 4 Medium, else Low. Critical is never
// produced here; it is reserved for emergency-stop reporting.
func assessComplexity(query string, agentCount int, parallel bool) Complexity {
	score := 0
	lower := strings.ToLower(query)

	if containsAny(lower, highComplexityKeywords) {
		score += 3
	} else if containsAny(lower, mediumComplexityKeywords) {
		score += 2
	}

	switch {
	case agentCount >= 4:
		score += 2
	case agentCount >= 2:
		score++
	}

	if parallel {
		score++
	}
	if len(query) > 200 {
		score++
	}

	switch {
	case score >= 6:
		return ComplexityHigh
	case score >= 4:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// approximateTokens converts text length into a rough token count (chars/4).
// It deliberately avoids an exact tokenizer; callers must treat the result as
// an order-of-magnitude figure.
func approximateTokens(text string) int {
	return len(text) / 4
}

// confidenceFor returns the fixed confidence assigned per tier. These are
// constants, not outputs of a statistical model.
func confidenceFor(c Complexity) float64 {
	if c >= ComplexityHigh {
		return 0.6
	}
	return 0.8
}
