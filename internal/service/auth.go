package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/audit"
	"github.com/heka-app/heka-server-go/internal/auth"
	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

const minRegistrationAge = 16

type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Age      int
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

type AuthService struct {
	userRepo  repository.UserRepository
	authority *auth.Authority
	tokens    *auth.TokenManager
	accessTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	authority *auth.Authority,
	tokens *auth.TokenManager,
	accessTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		authority: authority,
		tokens:    tokens,
		accessTTL: accessTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if params.Age < minRegistrationAge {
		return nil, apperrors.InvalidInput("age", fmt.Sprintf("must be at least %d", minRegistrationAge))
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("User")
	}

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(params.Name),
		Age:          params.Age,
	})
	if err != nil {
		// Races on the email unique index land here.
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventRegister,
		UserID: user.ID,
	})

	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string, meta auth.TokenMetadata) (*model.User, *TokenPair, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, nil, apperrors.Database(err)
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventLoginFailure,
			Details: map[string]interface{}{"email": normalized},
		})
		return nil, nil, apperrors.InvalidCredentials()
	}
	if !user.IsActive {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventLoginFailure,
			UserID:  user.ID,
			Details: map[string]interface{}{"reason": "account_inactive"},
		})
		return nil, nil, apperrors.AccountInactive()
	}

	pair, err := s.issuePair(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventLoginSuccess,
		UserID: user.ID,
	})

	return user, pair, nil
}

// Refresh rotates a refresh token and issues a new access token. Failures are
// audited with their precise reason; the HTTP layer collapses them.
func (s *AuthService) Refresh(ctx context.Context, rawToken string, meta auth.TokenMetadata) (*TokenPair, error) {
	userID, newRawToken, err := s.authority.Rotate(ctx, rawToken, meta)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventTokenRotateFailed,
			Details: map[string]interface{}{"reason": string(apperrors.GetCode(err))},
		})
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil || !user.IsActive {
		// Token outlived the account; burn the chain.
		if revokeErr := s.authority.RevokeAll(ctx, userID); revokeErr != nil {
			log.Error().Err(revokeErr).Str("user_id", userID).Msg("failed to revoke tokens for inactive account")
		}
		return nil, apperrors.AccountInactive()
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventTokenRotated,
		UserID: user.ID,
	})

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRawToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes every refresh token the user holds.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.authority.RevokeAll(ctx, userID); err != nil {
		return apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventLogout,
		UserID: userID,
	})
	return nil
}

// Deactivate disables the account and burns its refresh-token chain. The row
// stays; history referencing the user remains intact.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return apperrors.Database(err)
	}
	if err := s.authority.RevokeAll(ctx, userID); err != nil {
		return apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventAccountDeactivate,
		UserID: userID,
	})
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User, meta auth.TokenMetadata) (*TokenPair, error) {
	accessToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.authority.Issue(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}
