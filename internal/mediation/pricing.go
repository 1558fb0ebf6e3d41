package mediation

import "strings"

// modelRate is the USD price per one million tokens.
type modelRate struct {
	match  string
	input  float64
	output float64
}

// rateTable is matched top-down by substring against the lowercased model
// identifier. Order matters: "gpt-4o-mini" must be checked before "gpt-4o".
var rateTable = []modelRate{
	{match: "gpt-4o-mini", input: 0.15, output: 0.60},
	{match: "gpt-4o", input: 2.50, output: 10.00},
	{match: "gpt-3.5", input: 0.50, output: 1.50},
}

// fallbackRate is the most expensive tier. An unrecognized model must price
// conservatively, never at zero: the computed cost feeds financial auditing.
var fallbackRate = modelRate{input: 30.00, output: 60.00}

// CalculateCost returns the exact, reproducible cost of one provider call.
func CalculateCost(modelID string, inputTokens, outputTokens int) float64 {
	rate := fallbackRate
	lower := strings.ToLower(modelID)
	for _, r := range rateTable {
		if strings.Contains(lower, r.match) {
			rate = r
			break
		}
	}
	inputCost := float64(inputTokens) / 1_000_000 * rate.input
	outputCost := float64(outputTokens) / 1_000_000 * rate.output
	return inputCost + outputCost
}
