package mediation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/safety"
)

func TestBuildRequest(t *testing.T) {
	t.Run("embeds category and both perspectives", func(t *testing.T) {
		req := BuildRequest("first view", "second view", model.CategoryFinances, safety.Assessment{})

		assert.Contains(t, req.User, "Category: finances")
		assert.Contains(t, req.User, "first view")
		assert.Contains(t, req.User, "second view")
		assert.Contains(t, req.System, "relationship mediator")
		assert.Contains(t, req.System, `"common_ground"`)
	})

	t.Run("omits safety note when no concerns", func(t *testing.T) {
		req := BuildRequest("a", "b", model.CategoryOther, safety.Assessment{})
		assert.NotContains(t, req.User, "SAFETY NOTE")
	})

	t.Run("names concern types when concerns exist", func(t *testing.T) {
		assessment := safety.Assessment{
			HasConcerns:  true,
			ConcernTypes: []safety.ConcernType{safety.ConcernSubstance, safety.ConcernMentalHealthCrisis},
			Severity:     safety.SeverityHigh,
		}

		req := BuildRequest("a", "b", model.CategoryLifestyle, assessment)

		assert.Contains(t, req.User, "SAFETY NOTE")
		assert.Contains(t, req.User, "substance, mental_health_crisis")
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := BuildRequest("x", "y", model.CategoryFamily, safety.Assessment{})
		b := BuildRequest("x", "y", model.CategoryFamily, safety.Assessment{})
		assert.Equal(t, a, b)
	})
}
