// Package cost implements pre-flight cost projection, spend ceilings and live
// usage accounting for multi-agent research tasks.
//
// The package centers on Estimator, a single shared service injected into
// every component that spends LLM tokens:
//
//   - EstimateTaskCost projects tokens and dollars for a prospective task
//     from its query text, agent fan-out and parallelism
//   - ShouldProceed is the advisory admission gate against session, daily and
//     emergency ceilings
//   - StartTracking / RecordUsage / EndTracking bracket the live accounting
//     for one task
//   - Recommendations produces rule-based cost reduction advice
//
// Token counts are a chars/4 approximation, never an exact tokenizer output;
// treat EstimatedTokens as an order-of-magnitude figure.
package cost
