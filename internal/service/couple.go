package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/audit"
	"github.com/heka-app/heka-server-go/internal/config"
	"github.com/heka-app/heka-server-go/internal/database"
	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

// Excludes 0/O/1/I so codes survive being read aloud.
const invitationCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TxRunner runs a function inside a database transaction; *database.DB
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// CoupleWithInvitation is returned on couple creation so the client can show
// the code to share with the partner.
type CoupleWithInvitation struct {
	Couple     *model.Couple     `json:"couple"`
	Invitation *model.Invitation `json:"invitation"`
}

type CoupleService struct {
	db             TxRunner
	coupleRepo     repository.CoupleRepository
	invitationRepo repository.InvitationRepository
}

func NewCoupleService(
	db TxRunner,
	coupleRepo repository.CoupleRepository,
	invitationRepo repository.InvitationRepository,
) *CoupleService {
	return &CoupleService{
		db:             db,
		coupleRepo:     coupleRepo,
		invitationRepo: invitationRepo,
	}
}

// Create starts a pending couple with the caller as user1 and mints its
// invitation code.
func (s *CoupleService) Create(ctx context.Context, userID string) (*CoupleWithInvitation, error) {
	existing, err := s.coupleRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyCoupled()
	}

	var result CoupleWithInvitation
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		couples := s.coupleRepo.WithTx(tx)
		invitations := s.invitationRepo.WithTx(tx)

		couple, err := couples.Create(ctx, userID)
		if err != nil {
			return fmt.Errorf("create couple: %w", err)
		}

		code, err := s.uniqueCode(ctx, invitations)
		if err != nil {
			return err
		}

		invitation, err := invitations.Create(ctx, model.CreateInvitationParams{
			CoupleID:  couple.ID,
			Code:      code,
			CreatedBy: userID,
			ExpiresAt: time.Now().Add(config.InvitationExpiry),
		})
		if err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}

		result.Couple = couple
		result.Invitation = invitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventCoupleCreate,
		UserID:   userID,
		CoupleID: result.Couple.ID,
	})

	log.Info().
		Str("couple_id", result.Couple.ID).
		Str("user_id", userID).
		Time("invitation_expires_at", result.Invitation.ExpiresAt).
		Msg("couple created")

	return &result, nil
}

// Join redeems an invitation code, completing the couple with the caller as
// user2 and activating it.
func (s *CoupleService) Join(ctx context.Context, userID, code string) (*model.Couple, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	invitation, err := s.invitationRepo.FindActiveByCode(ctx, normalized)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if invitation == nil {
		return nil, apperrors.InvalidInvitation()
	}
	if invitation.CreatedBy == userID {
		return nil, apperrors.InvalidInput("code", "cannot join your own couple")
	}

	existing, err := s.coupleRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyCoupled()
	}

	couple, err := s.coupleRepo.FindByID(ctx, invitation.CoupleID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if couple == nil || couple.Status != model.CoupleStatusPending {
		return nil, apperrors.InvalidInvitation()
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.coupleRepo.WithTx(tx).Complete(ctx, couple.ID, userID); err != nil {
			return fmt.Errorf("complete couple: %w", err)
		}
		if err := s.invitationRepo.WithTx(tx).MarkUsed(ctx, invitation.ID); err != nil {
			return fmt.Errorf("mark invitation used: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventCoupleJoin,
		UserID:   userID,
		CoupleID: couple.ID,
	})

	return s.Get(ctx, userID)
}

// Get returns the caller's couple, pending or active.
func (s *CoupleService) Get(ctx context.Context, userID string) (*model.Couple, error) {
	couple, err := s.coupleRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if couple == nil {
		return nil, apperrors.NotFound("Couple")
	}
	return couple, nil
}

func (s *CoupleService) uniqueCode(ctx context.Context, invitations repository.InvitationRepository) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := generateInvitationCode()
		if err != nil {
			return "", fmt.Errorf("generate invitation code: %w", err)
		}
		existing, err := invitations.FindActiveByCode(ctx, code)
		if err != nil {
			return "", apperrors.Database(err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", apperrors.Internal("could not generate a unique invitation code")
}

func generateInvitationCode() (string, error) {
	chars := []byte(invitationCodeChars)
	code := make([]byte, 9)
	for i := range code {
		if i == 4 {
			code[i] = '-'
			continue
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		code[i] = chars[n.Int64()]
	}
	return string(code), nil
}
