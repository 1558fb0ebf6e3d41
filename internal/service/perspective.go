package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/audit"
	"github.com/heka-app/heka-server-go/internal/config"
	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/mediation"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

// Analyzer runs the mediation pipeline for a pair of perspectives.
// *mediation.Mediator satisfies it.
type Analyzer interface {
	Mediate(ctx context.Context, argumentID, perspective1, perspective2 string, category model.ArgumentCategory) (*mediation.Result, error)
}

type PerspectiveService struct {
	perspectiveRepo repository.PerspectiveRepository
	argumentRepo    repository.ArgumentRepository
	coupleRepo      repository.CoupleRepository
	insightRepo     repository.InsightRepository
	mediator        Analyzer
}

func NewPerspectiveService(
	perspectiveRepo repository.PerspectiveRepository,
	argumentRepo repository.ArgumentRepository,
	coupleRepo repository.CoupleRepository,
	insightRepo repository.InsightRepository,
	mediator Analyzer,
) *PerspectiveService {
	return &PerspectiveService{
		perspectiveRepo: perspectiveRepo,
		argumentRepo:    argumentRepo,
		coupleRepo:      coupleRepo,
		insightRepo:     insightRepo,
		mediator:        mediator,
	}
}

// Submit records the caller's perspective on an argument. Each partner gets
// exactly one; once both are in, the argument becomes active.
func (s *PerspectiveService) Submit(ctx context.Context, userID, argumentID, content string) (*model.Perspective, error) {
	content = strings.TrimSpace(content)
	if len(content) < config.PerspectiveMinLength {
		return nil, apperrors.InvalidInput("content", fmt.Sprintf("must be at least %d characters", config.PerspectiveMinLength))
	}
	if len(content) > config.PerspectiveMaxLength {
		return nil, apperrors.InvalidInput("content", fmt.Sprintf("must be at most %d characters", config.PerspectiveMaxLength))
	}

	argument, err := s.memberArgument(ctx, userID, argumentID)
	if err != nil {
		return nil, err
	}
	if argument.Status == model.StatusAnalyzed || argument.Status == model.StatusResolved || argument.Status == model.StatusArchived {
		return nil, apperrors.InvalidInput("argument", "perspectives are closed for this argument")
	}

	perspective, err := s.perspectiveRepo.Create(ctx, model.CreatePerspectiveParams{
		ArgumentID: argument.ID,
		UserID:     userID,
		Content:    content,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePerspective) {
			return nil, apperrors.AlreadyExists("Perspective")
		}
		return nil, apperrors.Database(err)
	}

	count, err := s.perspectiveRepo.CountByArgumentID(ctx, argument.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if count >= 2 && argument.Status == model.StatusDraft {
		if err := s.argumentRepo.UpdateStatus(ctx, argument.ID, model.StatusActive); err != nil {
			return nil, apperrors.Database(err)
		}
		log.Info().Str("argument_id", argument.ID).Msg("both perspectives submitted, argument active")
	}

	return perspective, nil
}

// List returns the perspectives the caller may see: their own always, the
// partner's only once the argument has been analyzed.
func (s *PerspectiveService) List(ctx context.Context, userID, argumentID string) ([]model.Perspective, error) {
	argument, err := s.memberArgument(ctx, userID, argumentID)
	if err != nil {
		return nil, err
	}

	perspectives, err := s.perspectiveRepo.ListByArgumentID(ctx, argument.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	analyzed := argument.Status == model.StatusAnalyzed || argument.Status == model.StatusResolved
	if analyzed {
		return perspectives, nil
	}

	own := make([]model.Perspective, 0, 1)
	for _, p := range perspectives {
		if p.UserID == userID {
			own = append(own, p)
		}
	}
	return own, nil
}

// Analyze runs the mediation pipeline for an argument and flips its status to
// analyzed on success.
func (s *PerspectiveService) Analyze(ctx context.Context, userID, argumentID string) (*mediation.Result, error) {
	argument, err := s.memberArgument(ctx, userID, argumentID)
	if err != nil {
		return nil, err
	}
	if argument.Status == model.StatusAnalyzed || argument.Status == model.StatusResolved {
		return nil, apperrors.AlreadyAnalyzed()
	}

	// The status can lag a durable insight when the post-insert flip failed.
	// Check the store before paying for a provider call, and heal the status.
	existing, err := s.insightRepo.FindByArgumentID(ctx, argument.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		if err := s.argumentRepo.UpdateStatus(ctx, argument.ID, model.StatusAnalyzed); err != nil {
			log.Error().Err(err).Str("argument_id", argument.ID).Msg("status heal failed")
		}
		return nil, apperrors.AlreadyAnalyzed()
	}

	perspectives, err := s.perspectiveRepo.ListByArgumentID(ctx, argument.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if len(perspectives) < 2 {
		return nil, apperrors.PerspectivesIncomplete()
	}

	result, err := s.mediator.Mediate(ctx, argument.ID, perspectives[0].Content, perspectives[1].Content, argument.Category)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeSafetyBlocked {
			audit.Log(ctx, audit.Event{
				Type:     audit.EventSafetyBlock,
				UserID:   userID,
				CoupleID: argument.CoupleID,
				Details:  map[string]interface{}{"argument_id": argument.ID},
			})
		}
		return nil, err
	}

	if err := s.argumentRepo.UpdateStatus(ctx, argument.ID, model.StatusAnalyzed); err != nil {
		// The insight is durable; the status catches up on the next analyze
		// attempt, which maps the duplicate insert to ALREADY_ANALYZED.
		log.Error().Err(err).Str("argument_id", argument.ID).Msg("insight stored but status update failed")
	}

	return result, nil
}

// Insight returns the stored analysis for an argument.
func (s *PerspectiveService) Insight(ctx context.Context, userID, argumentID string) (*model.AIInsight, error) {
	argument, err := s.memberArgument(ctx, userID, argumentID)
	if err != nil {
		return nil, err
	}

	insight, err := s.insightRepo.FindByArgumentID(ctx, argument.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if insight == nil {
		return nil, apperrors.NotFound("Insight")
	}
	return insight, nil
}

func (s *PerspectiveService) memberArgument(ctx context.Context, userID, argumentID string) (*model.Argument, error) {
	argument, err := s.argumentRepo.FindByID(ctx, argumentID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if argument == nil {
		return nil, apperrors.NotFound("Argument")
	}

	couple, err := s.coupleRepo.FindByID(ctx, argument.CoupleID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if couple == nil || !couple.HasMember(userID) {
		return nil, apperrors.NotFound("Argument")
	}
	return argument, nil
}
