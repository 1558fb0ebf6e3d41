package mediation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	t.Run("gpt-4o-mini tier", func(t *testing.T) {
		// 1M input + 1M output at $0.15/$0.60 per million.
		cost := CalculateCost("gpt-4o-mini", 1_000_000, 1_000_000)
		assert.InDelta(t, 0.75, cost, 1e-9)
	})

	t.Run("mini matches before the gpt-4o tier", func(t *testing.T) {
		cost := CalculateCost("gpt-4o-mini-2024-07-18", 1_000_000, 0)
		assert.InDelta(t, 0.15, cost, 1e-9)
	})

	t.Run("gpt-4o tier", func(t *testing.T) {
		cost := CalculateCost("gpt-4o", 1_000_000, 1_000_000)
		assert.InDelta(t, 12.50, cost, 1e-9)
	})

	t.Run("gpt-3.5 tier", func(t *testing.T) {
		cost := CalculateCost("gpt-3.5-turbo", 1_000_000, 1_000_000)
		assert.InDelta(t, 2.00, cost, 1e-9)
	})

	t.Run("unrecognized model falls back to highest tier", func(t *testing.T) {
		cost := CalculateCost("gpt-4", 1_000_000, 1_000_000)
		assert.InDelta(t, 90.00, cost, 1e-9)
		assert.Greater(t, cost, 0.0)
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		cost := CalculateCost("GPT-4O-MINI", 1_000_000, 1_000_000)
		assert.InDelta(t, 0.75, cost, 1e-9)
	})

	t.Run("zero tokens cost zero", func(t *testing.T) {
		assert.Zero(t, CalculateCost("gpt-4o-mini", 0, 0))
	})

	t.Run("small counts are deterministic", func(t *testing.T) {
		a := CalculateCost("gpt-4o-mini", 1234, 567)
		b := CalculateCost("gpt-4o-mini", 1234, 567)
		assert.Equal(t, a, b)
	})
}
