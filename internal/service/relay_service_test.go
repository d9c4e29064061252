package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursehub/backend/internal/database"
	apperrors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/llm"
	mock_llm "coursehub/backend/internal/llm/mocks"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/repository"
	mock_repo "coursehub/backend/internal/repository/mocks"
	"coursehub/backend/internal/service"
)

type relayMocks struct {
	repo *mock_repo.MockRepository
	llm  *mock_llm.MockLLMProvider
}

// Already the 4th in Tokyo, still the 3rd in UTC. Usage days follow UTC.
var relayNow = time.Date(2025, 3, 4, 8, 30, 0, 0, time.FixedZone("JST", 9*60*60))

const relayDay = "2025-03-03"

func setupRelayService(t *testing.T, limit int) (*service.RelayService, relayMocks) {
	mocks := relayMocks{
		repo: mock_repo.NewMockRepository(t),
		llm:  mock_llm.NewMockLLMProvider(t),
	}
	svc := service.NewRelayService(mocks.repo, mocks.llm, "relay-model", "You are a tutor.", limit).
		WithClock(func() time.Time { return relayNow })
	return svc, mocks
}

func TestRelayService_Usage(t *testing.T) {
	ctx := context.Background()

	t.Run("No requests yet", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(nil, repository.ErrNotFound).Once()

		usage, err := svc.Usage(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, &model.Usage{StudentID: "s1", UsageDate: relayDay, Limit: 20}, usage)
	})

	t.Run("Blank student counts as anonymous", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "anonymous", relayDay).Return(&model.Usage{ID: "u1", RequestCount: 4}, nil).Once()

		usage, err := svc.Usage(ctx, "  ")
		require.NoError(t, err)
		assert.Equal(t, "anonymous", usage.StudentID)
		assert.Equal(t, 4, usage.RequestCount)
	})

	t.Run("Failure - repository error", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(nil, errors.New("db error")).Once()

		_, err := svc.Usage(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
	})
}

func TestRelayService_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("First request of the day creates the counter", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(nil, repository.ErrNotFound).Once()
		mocks.repo.On("CreateUsage", ctx, mock.MatchedBy(func(u *model.Usage) bool {
			return u.ID != "" && u.StudentID == "s1" && u.UsageDate == relayDay && u.RequestCount == 1
		})).Return(nil).Once()

		usage, err := svc.Acquire(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, usage.RequestCount)
		assert.Equal(t, 20, usage.Limit)
	})

	t.Run("Later requests increment it", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(&model.Usage{ID: "u1", RequestCount: 19}, nil).Once()
		mocks.repo.On("IncrementUsage", ctx, "u1", 20).Return(20, nil).Once()

		usage, err := svc.Acquire(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 20, usage.RequestCount)
	})

	t.Run("Concurrent first request reuses the counter", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(nil, repository.ErrNotFound).Once()
		mocks.repo.On("CreateUsage", ctx, mock.Anything).Return(errors.New("UNIQUE constraint failed: student_api_usage.student_id, student_api_usage.usage_date")).Once()
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(&model.Usage{ID: "u1", StudentID: "s1", UsageDate: relayDay, RequestCount: 1}, nil).Once()
		mocks.repo.On("IncrementUsage", ctx, "u1", 20).Return(2, nil).Once()

		usage, err := svc.Acquire(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "u1", usage.ID)
		assert.Equal(t, 2, usage.RequestCount)
	})

	t.Run("Limit reached by a concurrent request", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(&model.Usage{ID: "u1", RequestCount: 19}, nil).Once()
		mocks.repo.On("IncrementUsage", ctx, "u1", 20).Return(0, repository.ErrNotFound).Once()

		usage, err := svc.Acquire(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrRateLimited)
		require.NotNil(t, usage)
		assert.Equal(t, 20, usage.RequestCount)
	})

	t.Run("Limit reached", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(&model.Usage{ID: "u1", RequestCount: 20}, nil).Once()

		usage, err := svc.Acquire(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrRateLimited)
		require.NotNil(t, usage)
		assert.Equal(t, 20, usage.RequestCount)
	})

	t.Run("Failure - counter create and reread", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(nil, repository.ErrNotFound).Twice()
		mocks.repo.On("CreateUsage", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := svc.Acquire(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("Relay disabled", func(t *testing.T) {
		svc, _ := setupRelayService(t, 0)

		_, err := svc.Acquire(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("Failure - counter write", func(t *testing.T) {
		svc, mocks := setupRelayService(t, 20)
		mocks.repo.On("GetUsage", ctx, "s1", relayDay).Return(&model.Usage{ID: "u1", RequestCount: 1}, nil).Once()
		mocks.repo.On("IncrementUsage", ctx, "u1", 20).Return(0, errors.New("locked")).Once()

		_, err := svc.Acquire(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrPersistence)
	})
}

func TestRelayService_AcquireStopsAtLimit(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "coursehub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := service.NewRelayService(repository.NewSQLiteRepository(db), mock_llm.NewMockLLMProvider(t), "relay-model", "You are a tutor.", 2).
		WithClock(func() time.Time { return relayNow })

	// ACT
	first, err := svc.Acquire(ctx, "s1")
	require.NoError(t, err)
	second, err := svc.Acquire(ctx, "s1")
	require.NoError(t, err)
	_, third := svc.Acquire(ctx, "s1")

	// ASSERT
	assert.Equal(t, 1, first.RequestCount)
	assert.Equal(t, 2, second.RequestCount)
	assert.Equal(t, first.ID, second.ID)
	assert.ErrorIs(t, third, apperrors.ErrRateLimited)

	usage, err := svc.Usage(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, usage.RequestCount)
}

func TestRelayService_Stream(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		meta       *service.ChatMeta
		wantPrompt string
	}{
		{
			name:       "Course context from meta",
			meta:       &service.ChatMeta{WeekTitle: "Week 3", Theme: "Persuasion", AIPromptHint: "Focus on claims."},
			wantPrompt: "You are a tutor. You are currently supporting Week 3 (theme: Persuasion). Focus on claims.",
		},
		{
			name:       "Defaults without meta",
			wantPrompt: "You are a tutor. You are currently supporting this week (theme: University English).",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mocks := setupRelayService(t, 20)
			req := &service.ChatRequest{
				StudentID: "s1",
				Meta:      tc.meta,
				Messages:  []model.ChatMessage{{Role: model.RoleUser, Content: "Is my claim clear?"}},
			}

			mocks.llm.On("GenerateStream", ctx, mock.MatchedBy(func(r *llm.GenerateRequest) bool {
				return r.Model == "relay-model" &&
					len(r.Messages) == 2 &&
					r.Messages[0].Role == model.RoleSystem &&
					strings.HasPrefix(r.Messages[0].Content, tc.wantPrompt) &&
					r.Messages[1].Content == "Is my claim clear?"
			}), mock.Anything).Run(reply("Yes.")).Return(nil).Once()

			text, err := llm.Complete(ctx, relayProvider{svc: svc, req: req}, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, "Yes.", text)
		})
	}
}

// relayProvider lets llm.Complete drain RelayService.Stream.
type relayProvider struct {
	svc *service.RelayService
	req *service.ChatRequest
}

func (p relayProvider) GenerateStream(ctx context.Context, _ *llm.GenerateRequest, ch chan<- llm.StreamResponse) error {
	return p.svc.Stream(ctx, p.req, ch)
}
