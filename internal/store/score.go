package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
)

// EntityUserScore names the score record in StoreError values.
const EntityUserScore = "user_score"

// ScoreStore is a last-write-wins store of one UserScore record per user.
type ScoreStore interface {
	// Get returns the record for userID.
	// Returns ErrScoreNotFound if the user has no record.
	Get(ctx context.Context, userID string) (*domain.UserScore, error)

	// Put replaces the whole record for userID. On success score carries the
	// CreatedAt and UpdatedAt that were persisted.
	// Returns ErrInvalidEntity if the record fails validation.
	Put(ctx context.Context, userID string, score *domain.UserScore) error

	// CreateDefault writes and returns an empty record for userID.
	CreateDefault(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error)

	// Delete removes the record for userID. Deleting a missing record is not an error.
	Delete(ctx context.Context, userID string) error

	// Validate round-trips a throwaway record to confirm the backend is
	// reachable and writable.
	Validate(ctx context.Context) bool
}

// ScoreResetter is implemented by stores that can replace a record with a
// fresh default atomically.
type ScoreResetter interface {
	Reset(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error)
}

// ValidationKeyPrefix prefixes the throwaway keys written by Validate.
const ValidationKeyPrefix = "__validate__"

// EncodeScore serializes a record into its persisted JSON document.
func EncodeScore(score *domain.UserScore) ([]byte, error) {
	data, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("%w: encode user score: %w", ErrInvalidEntity, err)
	}
	return data, nil
}

// DecodeScore parses a persisted JSON document. Missing maps are restored as
// empty maps so callers can always index into them.
func DecodeScore(data []byte) (*domain.UserScore, error) {
	var score domain.UserScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("%w: decode user score: %w", ErrStorageUnavailable, err)
	}
	if score.Mastery == nil {
		score.Mastery = make(map[string]*domain.ParentMastery)
	}
	for _, p := range score.Mastery {
		if p != nil && p.Words == nil {
			p.Words = make(map[string]*domain.WordMastery)
		}
	}
	return &score, nil
}

// PrepareForPut validates score for userID and returns a copy stamped with
// now as its update time. Every adapter runs it before writing.
func PrepareForPut(userID string, score *domain.UserScore, now time.Time) (*domain.UserScore, error) {
	if score == nil {
		return nil, fmt.Errorf("%w: nil user score", ErrInvalidEntity)
	}
	if score.UserID != userID {
		return nil, fmt.Errorf("%w: record belongs to %q, not %q", ErrInvalidEntity, score.UserID, userID)
	}
	if err := score.Validate(); err != nil {
		return nil, InvalidEntity(err)
	}

	prepared := score.Clone()
	prepared.UpdatedAt = now
	if prepared.CreatedAt.IsZero() {
		prepared.CreatedAt = now
	}
	return prepared, nil
}

// MarkWritten copies the persisted timestamps of written back onto score.
func MarkWritten(score, written *domain.UserScore) {
	score.CreatedAt = written.CreatedAt
	score.UpdatedAt = written.UpdatedAt
}
