package handler

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/heka-app/heka-server-go/internal/database"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) WithTx(tx *sqlx.Tx) repository.UserRepository { return m }

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) WithTx(tx *sqlx.Tx) repository.RefreshTokenRepository { return m }

func (m *mockRefreshTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, params model.CreateRefreshTokenParams) (*model.RefreshToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRefreshTokenRepo) MarkRevoked(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) MarkReplaced(ctx context.Context, id string, replacedByID string) (int64, error) {
	args := m.Called(ctx, id, replacedByID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRefreshTokenRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockCoupleRepo struct {
	mock.Mock
}

func (m *mockCoupleRepo) WithTx(tx *sqlx.Tx) repository.CoupleRepository { return m }

func (m *mockCoupleRepo) FindByID(ctx context.Context, id string) (*model.Couple, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Couple), args.Error(1)
}

func (m *mockCoupleRepo) FindActiveByUserID(ctx context.Context, userID string) (*model.Couple, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Couple), args.Error(1)
}

func (m *mockCoupleRepo) Create(ctx context.Context, user1ID string) (*model.Couple, error) {
	args := m.Called(ctx, user1ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Couple), args.Error(1)
}

func (m *mockCoupleRepo) Complete(ctx context.Context, id string, user2ID string) error {
	args := m.Called(ctx, id, user2ID)
	return args.Error(0)
}

type mockArgumentRepo struct {
	mock.Mock
}

func (m *mockArgumentRepo) WithTx(tx *sqlx.Tx) repository.ArgumentRepository { return m }

func (m *mockArgumentRepo) FindByID(ctx context.Context, id string) (*model.Argument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Argument), args.Error(1)
}

func (m *mockArgumentRepo) ListByCoupleID(ctx context.Context, coupleID string) ([]model.Argument, error) {
	args := m.Called(ctx, coupleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Argument), args.Error(1)
}

func (m *mockArgumentRepo) Create(ctx context.Context, params model.CreateArgumentParams) (*model.Argument, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Argument), args.Error(1)
}

func (m *mockArgumentRepo) UpdateStatus(ctx context.Context, id string, status model.ArgumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockPerspectiveRepo struct {
	mock.Mock
}

func (m *mockPerspectiveRepo) WithTx(tx *sqlx.Tx) repository.PerspectiveRepository { return m }

func (m *mockPerspectiveRepo) ListByArgumentID(ctx context.Context, argumentID string) ([]model.Perspective, error) {
	args := m.Called(ctx, argumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Perspective), args.Error(1)
}

func (m *mockPerspectiveRepo) CountByArgumentID(ctx context.Context, argumentID string) (int, error) {
	args := m.Called(ctx, argumentID)
	return args.Int(0), args.Error(1)
}

func (m *mockPerspectiveRepo) Create(ctx context.Context, params model.CreatePerspectiveParams) (*model.Perspective, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Perspective), args.Error(1)
}

type mockInsightRepo struct {
	mock.Mock
}

func (m *mockInsightRepo) WithTx(tx *sqlx.Tx) repository.InsightRepository { return m }

func (m *mockInsightRepo) FindByArgumentID(ctx context.Context, argumentID string) (*model.AIInsight, error) {
	args := m.Called(ctx, argumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIInsight), args.Error(1)
}

func (m *mockInsightRepo) Create(ctx context.Context, params model.CreateInsightParams) (*model.AIInsight, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIInsight), args.Error(1)
}
