// Package storetest holds the behavioural contract every store.ScoreStore
// implementation must satisfy. Adapter packages run it from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a ready store for one subtest.
type Factory func(t *testing.T) store.ScoreStore

// RunScoreStoreContract exercises s against the ScoreStore contract. Each
// subtest uses its own random user ID, so one backing database may be shared.
func RunScoreStoreContract(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("get missing record", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), newUserID())
		assert.True(t, store.IsNotFoundError(err), "got %v", err)
	})

	t.Run("create default", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := s.CreateDefault(ctx, userID, domain.LevelN4)
		require.NoError(t, err)
		assert.Equal(t, userID, created.UserID)
		assert.Equal(t, domain.LevelN4, created.Level)
		assert.Empty(t, created.Mastery)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assertSameScore(t, created, got)
	})

	t.Run("put round-trips nested record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := s.CreateDefault(ctx, userID, domain.LevelN5)
		require.NoError(t, err)

		record := sampleScore(created)
		require.NoError(t, s.Put(ctx, userID, record))

		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, record.Mastery, got.Mastery)
		assert.Equal(t, record.Level, got.Level)
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
		assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("put stamps the caller's record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		record, err := domain.NewUserScore(userID, domain.LevelN5, time.Time{})
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, userID, record))

		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.False(t, record.UpdatedAt.IsZero())
		assertSameScore(t, record, got)
	})

	t.Run("put replaces whole record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := s.CreateDefault(ctx, userID, domain.LevelN5)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, userID, sampleScore(created)))

		replacement := created.Clone()
		replacement.Mastery["月"] = domain.NewParentMastery("月")
		require.NoError(t, s.Put(ctx, userID, replacement))

		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.NotContains(t, got.Mastery, "日")
		assert.Contains(t, got.Mastery, "月")
	})

	t.Run("put without prior record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		record, err := domain.NewUserScore(userID, domain.LevelN2, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, userID, record))

		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.LevelN2, got.Level)
	})

	t.Run("put rejects invalid record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		record, err := domain.NewUserScore(newUserID(), domain.LevelN5, time.Now().UTC())
		require.NoError(t, err)
		assert.ErrorIs(t, s.Put(ctx, userID, record), store.ErrInvalidEntity)
		assert.ErrorIs(t, s.Put(ctx, userID, nil), store.ErrInvalidEntity)

		_, err = s.Get(ctx, userID)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("returned records are detached", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := s.CreateDefault(ctx, userID, domain.LevelN5)
		require.NoError(t, err)
		record := sampleScore(created)
		require.NoError(t, s.Put(ctx, userID, record))

		record.Mastery["日"].OverallScore = 99
		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		got.Mastery["日"].Words["w1"].MasteryScore = 42

		again, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assert.NotEqual(t, 99.0, again.Mastery["日"].OverallScore)
		assert.NotEqual(t, 42.0, again.Mastery["日"].Words["w1"].MasteryScore)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		userID := newUserID()

		_, err := s.CreateDefault(ctx, userID, domain.LevelN5)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, userID))
		require.NoError(t, s.Delete(ctx, userID))

		_, err = s.Get(ctx, userID)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("validate", func(t *testing.T) {
		s := newStore(t)
		assert.True(t, s.Validate(context.Background()))
	})

	t.Run("reset", func(t *testing.T) {
		s := newStore(t)
		resetter, ok := s.(store.ScoreResetter)
		if !ok {
			t.Skip("store does not implement ScoreResetter")
		}
		ctx := context.Background()
		userID := newUserID()

		created, err := s.CreateDefault(ctx, userID, domain.LevelN5)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, userID, sampleScore(created)))

		fresh, err := resetter.Reset(ctx, userID, domain.LevelN3)
		require.NoError(t, err)
		assert.Empty(t, fresh.Mastery)
		assert.Equal(t, domain.LevelN3, fresh.Level)

		got, err := s.Get(ctx, userID)
		require.NoError(t, err)
		assertSameScore(t, fresh, got)
	})
}

func newUserID() string {
	return "user-" + uuid.NewString()
}

// sampleScore returns a copy of base with one parent holding two words.
func sampleScore(base *domain.UserScore) *domain.UserScore {
	seen := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	record := base.Clone()
	p := domain.NewParentMastery("日")
	p.Words["w1"] = &domain.WordMastery{
		WordID:          "w1",
		ParentID:        "日",
		MasteryScore:    16.666666666666668,
		ExerciseScores:  domain.ExerciseScores{Writing: 5.555555555555556, Reading: 5.555555555555556, Pairing: 5.555555555555556},
		TotalAttempts:   4,
		CorrectAttempts: 3,
		LastSeen:        seen,
	}
	p.Words["w2"] = &domain.WordMastery{WordID: "w2", ParentID: "日", TotalAttempts: 1}
	p.OverallScore = 16.666666666666668
	p.ColorCode = domain.ColorOrange
	p.LastSeen = seen
	record.Mastery["日"] = p
	return record
}

func assertSameScore(t *testing.T, want, got *domain.UserScore) {
	t.Helper()
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Level, got.Level)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, want.Mastery, got.Mastery)
}
