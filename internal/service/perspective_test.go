package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/mediation"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/repository"
)

type stubAnalyzer struct {
	result *mediation.Result
	err    error
	calls  int
}

func (s *stubAnalyzer) Mediate(ctx context.Context, argumentID, perspective1, perspective2 string, category model.ArgumentCategory) (*mediation.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type perspectiveFixture struct {
	svc             *PerspectiveService
	perspectiveRepo *mockPerspectiveRepo
	argumentRepo    *mockArgumentRepo
	coupleRepo      *mockCoupleRepo
	insightRepo     *mockInsightRepo
	analyzer        *stubAnalyzer
}

func newPerspectiveFixture(argumentStatus model.ArgumentStatus) *perspectiveFixture {
	f := &perspectiveFixture{
		perspectiveRepo: new(mockPerspectiveRepo),
		argumentRepo:    new(mockArgumentRepo),
		coupleRepo:      new(mockCoupleRepo),
		insightRepo:     new(mockInsightRepo),
		analyzer:        &stubAnalyzer{result: &mediation.Result{Insight: &model.AIInsight{ID: "insight-1"}}},
	}
	f.svc = NewPerspectiveService(f.perspectiveRepo, f.argumentRepo, f.coupleRepo, f.insightRepo, f.analyzer)

	f.argumentRepo.On("FindByID", mock.Anything, "argument-1").
		Return(&model.Argument{
			ID:       "argument-1",
			CoupleID: "couple-1",
			Category: model.CategoryCommunication,
			Status:   argumentStatus,
		}, nil)
	f.coupleRepo.On("FindByID", mock.Anything, "couple-1").Return(activeCouple(), nil)
	return f
}

func TestPerspectiveSubmit(t *testing.T) {
	ctx := context.Background()
	content := "I feel unheard when plans change last minute."

	t.Run("stores trimmed content", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusDraft)

		f.perspectiveRepo.On("Create", mock.Anything, model.CreatePerspectiveParams{
			ArgumentID: "argument-1",
			UserID:     "user-1",
			Content:    content,
		}).Return(&model.Perspective{ID: "perspective-1"}, nil)
		f.perspectiveRepo.On("CountByArgumentID", mock.Anything, "argument-1").Return(1, nil)

		perspective, err := f.svc.Submit(ctx, "user-1", "argument-1", "  "+content+"  ")

		require.NoError(t, err)
		assert.Equal(t, "perspective-1", perspective.ID)
		f.argumentRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("second perspective activates the argument", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusDraft)

		f.perspectiveRepo.On("Create", mock.Anything, mock.AnythingOfType("model.CreatePerspectiveParams")).
			Return(&model.Perspective{ID: "perspective-2"}, nil)
		f.perspectiveRepo.On("CountByArgumentID", mock.Anything, "argument-1").Return(2, nil)
		f.argumentRepo.On("UpdateStatus", mock.Anything, "argument-1", model.StatusActive).Return(nil)

		_, err := f.svc.Submit(ctx, "user-2", "argument-1", content)

		require.NoError(t, err)
		f.argumentRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "argument-1", model.StatusActive)
	})

	t.Run("one perspective per user", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusDraft)

		f.perspectiveRepo.On("Create", mock.Anything, mock.AnythingOfType("model.CreatePerspectiveParams")).
			Return(nil, repository.ErrDuplicatePerspective)

		_, err := f.svc.Submit(ctx, "user-1", "argument-1", content)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAlreadyExists, apperrors.GetCode(err))
	})

	t.Run("rejects out-of-bounds content", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusDraft)

		_, tooShort := f.svc.Submit(ctx, "user-1", "argument-1", "short")
		_, tooLong := f.svc.Submit(ctx, "user-1", "argument-1", strings.Repeat("a", 5001))

		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(tooShort))
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(tooLong))
		f.perspectiveRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects submission after analysis", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusAnalyzed)

		_, err := f.svc.Submit(ctx, "user-1", "argument-1", content)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
		f.perspectiveRepo.AssertNotCalled(t, "Create")
	})
}

func TestPerspectiveList(t *testing.T) {
	ctx := context.Background()
	both := []model.Perspective{
		{ID: "perspective-1", UserID: "user-1", Content: "mine"},
		{ID: "perspective-2", UserID: "user-2", Content: "theirs"},
	}

	t.Run("before analysis a member sees only their own", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusActive)
		f.perspectiveRepo.On("ListByArgumentID", mock.Anything, "argument-1").Return(both, nil)

		perspectives, err := f.svc.List(ctx, "user-1", "argument-1")

		require.NoError(t, err)
		require.Len(t, perspectives, 1)
		assert.Equal(t, "user-1", perspectives[0].UserID)
	})

	t.Run("after analysis both are visible", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusAnalyzed)
		f.perspectiveRepo.On("ListByArgumentID", mock.Anything, "argument-1").Return(both, nil)

		perspectives, err := f.svc.List(ctx, "user-1", "argument-1")

		require.NoError(t, err)
		assert.Len(t, perspectives, 2)
	})
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	both := []model.Perspective{
		{ID: "perspective-1", UserID: "user-1", Content: "We never agree on budgets."},
		{ID: "perspective-2", UserID: "user-2", Content: "Saving matters more than treats."},
	}

	t.Run("runs mediation and marks the argument analyzed", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusActive)
		f.insightRepo.On("FindByArgumentID", mock.Anything, "argument-1").Return(nil, nil)
		f.perspectiveRepo.On("ListByArgumentID", mock.Anything, "argument-1").Return(both, nil)
		f.argumentRepo.On("UpdateStatus", mock.Anything, "argument-1", model.StatusAnalyzed).Return(nil)

		result, err := f.svc.Analyze(ctx, "user-1", "argument-1")

		require.NoError(t, err)
		assert.Equal(t, "insight-1", result.Insight.ID)
		assert.Equal(t, 1, f.analyzer.calls)
		f.argumentRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "argument-1", model.StatusAnalyzed)
	})

	t.Run("requires both perspectives", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusDraft)
		f.insightRepo.On("FindByArgumentID", mock.Anything, "argument-1").Return(nil, nil)
		f.perspectiveRepo.On("ListByArgumentID", mock.Anything, "argument-1").Return(both[:1], nil)

		_, err := f.svc.Analyze(ctx, "user-1", "argument-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodePerspectivesIncomplete, apperrors.GetCode(err))
		assert.Zero(t, f.analyzer.calls)
	})

	t.Run("refuses a second analysis", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusAnalyzed)

		_, err := f.svc.Analyze(ctx, "user-1", "argument-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAlreadyAnalyzed, apperrors.GetCode(err))
		assert.Zero(t, f.analyzer.calls)
	})

	t.Run("durable insight refuses before the provider call and heals the status", func(t *testing.T) {
		// The status can lag when the post-insert flip failed; the stored
		// insight is the source of truth.
		f := newPerspectiveFixture(model.StatusActive)
		f.insightRepo.On("FindByArgumentID", mock.Anything, "argument-1").
			Return(&model.AIInsight{ID: "insight-1", ArgumentID: "argument-1"}, nil)
		f.argumentRepo.On("UpdateStatus", mock.Anything, "argument-1", model.StatusAnalyzed).Return(nil)

		_, err := f.svc.Analyze(ctx, "user-1", "argument-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAlreadyAnalyzed, apperrors.GetCode(err))
		assert.Zero(t, f.analyzer.calls)
		f.argumentRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "argument-1", model.StatusAnalyzed)
	})

	t.Run("safety block propagates without status change", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusActive)
		f.analyzer.err = apperrors.SafetyBlocked("We noticed some concerning content.")
		f.insightRepo.On("FindByArgumentID", mock.Anything, "argument-1").Return(nil, nil)
		f.perspectiveRepo.On("ListByArgumentID", mock.Anything, "argument-1").Return(both, nil)

		_, err := f.svc.Analyze(ctx, "user-1", "argument-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSafetyBlocked, apperrors.GetCode(err))
		f.argumentRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("concurrent analyzes commit a single insight", func(t *testing.T) {
		store := newRaceInsightStore()
		analyzer := &storeBackedAnalyzer{store: store}
		perspectiveRepo := new(mockPerspectiveRepo)
		argumentRepo := new(mockArgumentRepo)
		coupleRepo := new(mockCoupleRepo)
		svc := NewPerspectiveService(perspectiveRepo, argumentRepo, coupleRepo, store, analyzer)

		argumentRepo.On("FindByID", mock.Anything, "argument-1").
			Return(&model.Argument{ID: "argument-1", CoupleID: "couple-1", Category: model.CategoryCommunication, Status: model.StatusActive}, nil)
		coupleRepo.On("FindByID", mock.Anything, "couple-1").Return(activeCouple(), nil)
		perspectiveRepo.On("ListByArgumentID", mock.Anything, "argument-1").Return(both, nil)
		argumentRepo.On("UpdateStatus", mock.Anything, "argument-1", model.StatusAnalyzed).Return(nil)

		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				_, err := svc.Analyze(ctx, "user-1", "argument-1")
				errs <- err
			}()
		}

		var wins, losses int
		for i := 0; i < 2; i++ {
			if err := <-errs; err == nil {
				wins++
			} else {
				assert.Equal(t, apperrors.ErrCodeAlreadyAnalyzed, apperrors.GetCode(err))
				losses++
			}
		}

		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, losses)
		assert.Len(t, store.insights, 1)
		// Both passed the empty pre-check, so both paid; the store decided.
		assert.Equal(t, int32(2), analyzer.calls.Load())
	})

	t.Run("non-member cannot analyze", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusActive)

		_, err := f.svc.Analyze(ctx, "intruder", "argument-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
		assert.Zero(t, f.analyzer.calls)
	})
}

func TestInsight(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored insight", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusAnalyzed)
		f.insightRepo.On("FindByArgumentID", mock.Anything, "argument-1").
			Return(&model.AIInsight{ID: "insight-1", ArgumentID: "argument-1"}, nil)

		insight, err := f.svc.Insight(ctx, "user-1", "argument-1")

		require.NoError(t, err)
		assert.Equal(t, "insight-1", insight.ID)
	})

	t.Run("not found before analysis", func(t *testing.T) {
		f := newPerspectiveFixture(model.StatusActive)
		f.insightRepo.On("FindByArgumentID", mock.Anything, "argument-1").Return(nil, nil)

		_, err := f.svc.Insight(ctx, "user-1", "argument-1")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

// raceInsightStore is a stateful insight store whose reads rendezvous on a
// barrier, so two analyzers both observe the empty pre-check before either
// writes. The unique-insert rule then admits exactly one.
type raceInsightStore struct {
	mu       sync.Mutex
	insights map[string]*model.AIInsight
	barrier  sync.WaitGroup
}

func newRaceInsightStore() *raceInsightStore {
	s := &raceInsightStore{insights: map[string]*model.AIInsight{}}
	s.barrier.Add(2)
	return s
}

func (s *raceInsightStore) FindByArgumentID(ctx context.Context, argumentID string) (*model.AIInsight, error) {
	s.barrier.Done()
	s.barrier.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if insight, ok := s.insights[argumentID]; ok {
		copied := *insight
		return &copied, nil
	}
	return nil, nil
}

func (s *raceInsightStore) Create(ctx context.Context, params model.CreateInsightParams) (*model.AIInsight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.insights[params.ArgumentID]; ok {
		return nil, repository.ErrDuplicateInsight
	}
	insight := &model.AIInsight{ID: "insight-1", ArgumentID: params.ArgumentID}
	s.insights[params.ArgumentID] = insight
	return insight, nil
}

func (s *raceInsightStore) WithTx(tx *sqlx.Tx) repository.InsightRepository {
	return s
}

// storeBackedAnalyzer inserts through the shared store the way the real
// pipeline does, mapping the duplicate insert to the already-analyzed outcome.
type storeBackedAnalyzer struct {
	store *raceInsightStore
	calls atomic.Int32
}

func (a *storeBackedAnalyzer) Mediate(ctx context.Context, argumentID, perspective1, perspective2 string, category model.ArgumentCategory) (*mediation.Result, error) {
	a.calls.Add(1)
	insight, err := a.store.Create(ctx, model.CreateInsightParams{ArgumentID: argumentID})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateInsight) {
			return nil, apperrors.AlreadyAnalyzed()
		}
		return nil, apperrors.Database(err)
	}
	return &mediation.Result{Insight: insight}, nil
}
