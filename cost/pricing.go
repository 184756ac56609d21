package cost

// Rate holds the dollar price per 1K tokens for one provider/model pair,
// split by direction.
type Rate struct {
	InputPer1K  float64 `json:"input" yaml:"input"`
	OutputPer1K float64 `json:"output" yaml:"output"`
}

// FallbackRate is substituted whenever a provider/model pair is absent from
// the rate table. Substitution is logged but never fatal: pricing gaps trade
// accounting accuracy for availability.
var FallbackRate = Rate{InputPer1K: 0.0001, OutputPer1K: 0.0005}

// RateTable maps provider name to model name to price. Arbitrary pairs are
// supported; unknown pairs resolve to FallbackRate.
type RateTable map[string]map[string]Rate

// Lookup returns the rate for a provider/model pair and whether the pair was
// present in the table.
func (t RateTable) Lookup(provider, model string) (Rate, bool) {
	models, ok := t[provider]
	if !ok {
		return FallbackRate, false
	}
	rate, ok := models[model]
	if !ok {
		return FallbackRate, false
	}
	return rate, true
}

// cost computes the dollar price of a call given token counts per direction.
func (r Rate) cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*r.InputPer1K + float64(outputTokens)/1000*r.OutputPer1K
}

// DefaultRateTable returns the built-in prices for commonly used pairs.
// Deployments override these via configuration; the defaults keep the
// estimator usable out of the box.
func DefaultRateTable() RateTable {
	return RateTable{
		"openai": {
			"gpt-4o":      {InputPer1K: 0.0025, OutputPer1K: 0.01},
			"gpt-4o-mini": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		},
		"anthropic": {
			"claude-sonnet-4-20250514":   {InputPer1K: 0.003, OutputPer1K: 0.015},
			"claude-3-5-haiku-20241022":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
			"claude-3-5-sonnet-20241022": {InputPer1K: 0.003, OutputPer1K: 0.015},
		},
	}
}

// Thresholds are the spend ceilings enforced (advisorily) by the estimator,
// all in USD. Warning levels only log; limits reject admission.
type Thresholds struct {
	SessionWarning float64 `yaml:"session_warning"`
	SessionLimit   float64 `yaml:"session_limit"`
	DailyWarning   float64 `yaml:"daily_warning"`
	DailyLimit     float64 `yaml:"daily_limit"`
	EmergencyStop  float64 `yaml:"emergency_stop"`
}

// DefaultThresholds returns the stock ceilings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SessionWarning: 1.0,
		SessionLimit:   5.0,
		DailyWarning:   10.0,
		DailyLimit:     50.0,
		EmergencyStop:  100.0,
	}
}
