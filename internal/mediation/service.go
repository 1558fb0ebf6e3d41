package mediation

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
	"github.com/heka-app/heka-server-go/internal/safety"
)

// Generator produces a raw provider result for a built request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*GenerationResult, error)
	Model() string
}

// Result is a completed mediation: the persisted insight plus the safety
// assessment that accompanied it (nil when no concerns were found).
type Result struct {
	Insight *model.AIInsight
	Safety  *safety.Assessment
}

// Mediator runs the safety-gated pipeline: classify, build, generate, parse,
// validate, price, persist exactly once.
type Mediator struct {
	classifier  *safety.Classifier
	gateway     Generator
	insightRepo repository.InsightRepository
}

func NewMediator(classifier *safety.Classifier, gateway Generator, insightRepo repository.InsightRepository) *Mediator {
	return &Mediator{
		classifier:  classifier,
		gateway:     gateway,
		insightRepo: insightRepo,
	}
}

// Mediate generates and persists the one insight for an argument.
//
// A critical safety classification blocks before any provider call is made.
// Provider failures surface as GENERATION_FAILED with nothing persisted.
// A concurrent duplicate insert loses to the store's uniqueness constraint
// and surfaces as ALREADY_ANALYZED.
func (m *Mediator) Mediate(
	ctx context.Context,
	argumentID string,
	perspective1, perspective2 string,
	category model.ArgumentCategory,
) (*Result, error) {
	assessment := m.classifier.Classify(perspective1, perspective2)

	if assessment.Blocked() {
		log.Warn().
			Str("argument_id", argumentID).
			Interface("concern_types", assessment.ConcernTypes).
			Msg("mediation blocked by safety gate")
		return nil, apperrors.SafetyBlocked(assessment.Message).WithDetails(map[string]any{
			"action":        assessment.Action,
			"concern_types": assessment.ConcernTypes,
			"resources":     safety.CrisisResources(),
		})
	}

	req := BuildRequest(perspective1, perspective2, category, assessment)

	generated, err := m.gateway.Generate(ctx, req)
	if err != nil {
		return nil, apperrors.GenerationFailed(err)
	}

	parsed, raw := ParseResponse(generated.Content)

	report := ValidateResult(parsed)
	if !report.Valid {
		// Availability over strictness: an imperfect insight still persists.
		log.Warn().Str("argument_id", argumentID).Msg("mediation result failed quality checks")
	}

	cost := CalculateCost(m.gateway.Model(), generated.InputTokens, generated.OutputTokens)

	insight, err := m.insightRepo.Create(ctx, model.CreateInsightParams{
		ArgumentID:        argumentID,
		Summary:           parsed.Summary,
		CommonGround:      parsed.CommonGround,
		Disagreements:     parsed.Disagreements,
		RootCauses:        parsed.RootCauses,
		Suggestions:       parsed.Suggestions,
		CommunicationTips: parsed.CommunicationTips,
		FullResponse:      raw,
		ModelUsed:         m.gateway.Model(),
		Cost:              cost,
		InputTokens:       generated.InputTokens,
		OutputTokens:      generated.OutputTokens,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateInsight) {
			return nil, apperrors.AlreadyAnalyzed()
		}
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("argument_id", argumentID).
		Str("model", m.gateway.Model()).
		Float64("cost", cost).
		Int("input_tokens", generated.InputTokens).
		Int("output_tokens", generated.OutputTokens).
		Bool("content_flagged", report.ContentFlagged).
		Msg("mediation completed")

	result := &Result{Insight: insight}
	if assessment.HasConcerns {
		result.Safety = &assessment
	}
	return result, nil
}
