package service

import (
	"context"
	"strings"

	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

type CreateArgumentParams struct {
	Title    string
	Category model.ArgumentCategory
	Priority model.ArgumentPriority
}

type ArgumentService struct {
	argumentRepo repository.ArgumentRepository
	coupleRepo   repository.CoupleRepository
}

func NewArgumentService(
	argumentRepo repository.ArgumentRepository,
	coupleRepo repository.CoupleRepository,
) *ArgumentService {
	return &ArgumentService{
		argumentRepo: argumentRepo,
		coupleRepo:   coupleRepo,
	}
}

// Create records a new argument for the caller's couple. The couple must be
// active: there is no one to argue with before the partner joins.
func (s *ArgumentService) Create(ctx context.Context, userID string, params CreateArgumentParams) (*model.Argument, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if !params.Category.Valid() {
		return nil, apperrors.InvalidInput("category", "unknown category")
	}
	if params.Priority == "" {
		params.Priority = model.PriorityMedium
	}
	if !params.Priority.Valid() {
		return nil, apperrors.InvalidInput("priority", "unknown priority")
	}

	couple, err := s.activeCouple(ctx, userID)
	if err != nil {
		return nil, err
	}

	argument, err := s.argumentRepo.Create(ctx, model.CreateArgumentParams{
		CoupleID: couple.ID,
		Title:    title,
		Category: params.Category,
		Priority: params.Priority,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return argument, nil
}

// List returns all arguments of the caller's couple, newest first.
func (s *ArgumentService) List(ctx context.Context, userID string) ([]model.Argument, error) {
	couple, err := s.coupleRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if couple == nil {
		return []model.Argument{}, nil
	}

	arguments, err := s.argumentRepo.ListByCoupleID(ctx, couple.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return arguments, nil
}

// Get returns a single argument after checking the caller belongs to its
// couple. Non-members get the same response as a missing argument.
func (s *ArgumentService) Get(ctx context.Context, userID, argumentID string) (*model.Argument, error) {
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

// Resolve closes an analyzed argument.
func (s *ArgumentService) Resolve(ctx context.Context, userID, argumentID string) (*model.Argument, error) {
	return s.transition(ctx, userID, argumentID, model.StatusResolved, func(current model.ArgumentStatus) bool {
		return current == model.StatusAnalyzed || current == model.StatusActive
	})
}

// Archive removes an argument from the active list without deleting it.
func (s *ArgumentService) Archive(ctx context.Context, userID, argumentID string) (*model.Argument, error) {
	return s.transition(ctx, userID, argumentID, model.StatusArchived, func(current model.ArgumentStatus) bool {
		return current != model.StatusArchived
	})
}

func (s *ArgumentService) transition(
	ctx context.Context,
	userID, argumentID string,
	to model.ArgumentStatus,
	allowed func(model.ArgumentStatus) bool,
) (*model.Argument, error) {
	argument, err := s.Get(ctx, userID, argumentID)
	if err != nil {
		return nil, err
	}
	if !allowed(argument.Status) {
		return nil, apperrors.InvalidInput("status", "cannot move from "+string(argument.Status)+" to "+string(to))
	}

	if err := s.argumentRepo.UpdateStatus(ctx, argument.ID, to); err != nil {
		return nil, apperrors.Database(err)
	}
	argument.Status = to
	return argument, nil
}

func (s *ArgumentService) activeCouple(ctx context.Context, userID string) (*model.Couple, error) {
	couple, err := s.coupleRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if couple == nil || couple.Status != model.CoupleStatusActive {
		return nil, apperrors.Forbidden("An active couple is required")
	}
	return couple, nil
}
