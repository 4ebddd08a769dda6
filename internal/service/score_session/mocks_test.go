package score_session_test

import (
	"context"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockScoreStore mocks store.ScoreStore. It deliberately does not implement
// store.ScoreResetter.
type MockScoreStore struct {
	mock.Mock
}

var _ store.ScoreStore = (*MockScoreStore)(nil)

func (m *MockScoreStore) Get(ctx context.Context, userID string) (*domain.UserScore, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserScore), args.Error(1)
}

func (m *MockScoreStore) Put(ctx context.Context, userID string, score *domain.UserScore) error {
	args := m.Called(ctx, userID, score)
	return args.Error(0)
}

func (m *MockScoreStore) CreateDefault(
	ctx context.Context,
	userID string,
	level domain.Level,
) (*domain.UserScore, error) {
	args := m.Called(ctx, userID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserScore), args.Error(1)
}

func (m *MockScoreStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockScoreStore) Validate(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}
