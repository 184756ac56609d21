package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eunice-ai/eunice/config"
	"github.com/eunice-ai/eunice/cost"
)

var (
	estAgents   string
	estParallel bool
	estContext  string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [query]",
	Short: "Project the cost of a research task before running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estAgents, "agents", "literature", "Comma-separated agent types")
	estimateCmd.Flags().BoolVar(&estParallel, "parallel", false, "Assume parallel execution")
	estimateCmd.Flags().StringVar(&estContext, "context", "", "Additional context text included in prompts")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	estimator := cost.NewEstimator(func(o *cost.Options) {
		o.Rates = cfg.RateTable()
		o.Thresholds = cfg.CostThresholds
		o.DefaultProvider = cfg.ResearchManager.Provider
		o.DefaultModel = cfg.ResearchManager.Model
	})

	agents := strings.Split(estAgents, ",")
	estimate := estimator.EstimateTaskCost(args[0], agents, estParallel, estContext)

	fmt.Printf("Complexity:  %s (confidence %.1f)\n", estimate.Complexity, estimate.Confidence)
	fmt.Printf("Tokens:      ~%d\n", estimate.EstimatedTokens)
	fmt.Printf("Cost:        $%.4f\n", estimate.EstimatedCostUSD)
	fmt.Printf("Agents:      %d (parallel factor %d)\n", estimate.AgentCount, estimate.ParallelFactor)
	fmt.Printf("Reasoning:   %s\n", estimate.Reasoning)

	if proceed, reason := estimator.ShouldProceed(estimate, "cli"); !proceed {
		fmt.Printf("\nAdmission:   REJECTED (%s)\n", reason)
	} else {
		fmt.Printf("\nAdmission:   ok (%s)\n", reason)
	}

	if recs := estimator.Recommendations(estimate); len(recs) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range recs {
			fmt.Printf("  - [%s] %s (projected $%.4f)\n", r.Kind, r.Message, r.ProjectedCostUSD)
		}
	}
	return nil
}
