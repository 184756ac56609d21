package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Kind)
	}
	return out
}

func TestRecommendationsCheapSimpleTask(t *testing.T) {
	e := NewEstimator()

	recs := e.Recommendations(Estimate{
		EstimatedCostUSD: 0.05,
		Complexity:       ComplexityLow,
		AgentCount:       1,
		ParallelFactor:   1,
	})

	assert.Empty(t, recs)
}

func TestRecommendationsExpensiveParallelTask(t *testing.T) {
	e := NewEstimator()

	recs := e.Recommendations(Estimate{
		EstimatedCostUSD: 2.0,
		Complexity:       ComplexityHigh,
		AgentCount:       4,
		ParallelFactor:   4,
	})

	got := kinds(recs)
	assert.Contains(t, got, RecommendDecompose)
	assert.Contains(t, got, RecommendSingleAgent)
	assert.Contains(t, got, RecommendSequential)
	assert.Contains(t, got, RecommendReuseMemory)

	for _, r := range recs {
		switch r.Kind {
		case RecommendSingleAgent:
			assert.InDelta(t, 0.8, r.ProjectedCostUSD, 1e-9)
		case RecommendSequential:
			assert.InDelta(t, 1.4, r.ProjectedCostUSD, 1e-9)
		}
	}
}

func TestComplexityMultipliers(t *testing.T) {
	tests := []struct {
		complexity Complexity
		multiplier float64
	}{
		{ComplexityLow, 1.0},
		{ComplexityMedium, 2.5},
		{ComplexityHigh, 5.0},
		{ComplexityCritical, 10.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.multiplier, tt.complexity.Multiplier(), tt.complexity.String())
	}
}

// The classifier never emits Critical; the tier is reserved for
// emergency-stop reporting.
func TestClassifierNeverCritical(t *testing.T) {
	query := "comprehensive systematic review meta-analysis statistical analysis " +
		"comprehensive systematic review meta-analysis statistical analysis " +
		"comprehensive systematic review meta-analysis statistical analysis"
	got := assessComplexity(query, 10, true)
	assert.Equal(t, ComplexityHigh, got)
}
