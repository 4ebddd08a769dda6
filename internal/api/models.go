package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/pairing"
	"github.com/phrazzld/coban-api/internal/service/score_session"
	"github.com/samber/lo"
)

// InitScoreRequest defines the payload for initialising a user's score.
type InitScoreRequest struct {
	Level string `json:"level" validate:"omitempty,oneof=N5 N4 N3 N2 N1"`
}

// ResultRequest is one exercise outcome.
type ResultRequest struct {
	WordID       string `json:"wordId"       validate:"required"`
	ParentID     string `json:"parentId"     validate:"required"`
	ExerciseType string `json:"exerciseType" validate:"required,oneof=writing reading pairing"`
	IsCorrect    *bool  `json:"isCorrect"    validate:"required"`
}

// RecordResultsRequest defines the payload for recording a result batch.
type RecordResultsRequest struct {
	Results []ResultRequest `json:"results" validate:"required,min=1,dive"`
}

func (r RecordResultsRequest) toDomain() []domain.ExerciseResult {
	return lo.Map(r.Results, func(res ResultRequest, _ int) domain.ExerciseResult {
		return domain.ExerciseResult{
			WordID:       res.WordID,
			ParentID:     res.ParentID,
			ExerciseType: domain.ExerciseType(res.ExerciseType),
			IsCorrect:    *res.IsCorrect,
		}
	})
}

// ResetParentsRequest names the parents to clear.
type ResetParentsRequest struct {
	ParentIDs []string `json:"parentIds" validate:"required,min=1,dive,required"`
}

// ResetParentsResponse lists the parents that were cleared.
type ResetParentsResponse struct {
	Removed []string `json:"removed"`
}

// ScoreResponse is a user's full record with its summary.
type ScoreResponse struct {
	Score   *domain.UserScore     `json:"score"`
	Summary score_session.Summary `json:"summary"`
}

// ProgressResponse holds the progress figures, as whole percentages.
type ProgressResponse struct {
	OverallProgress  int  `json:"overallProgress"`
	LessonProgress   *int `json:"lessonProgress,omitempty"`
	ExerciseProgress *int `json:"exerciseProgress,omitempty"`
}

// ParentResponse is one parent's mastery.
type ParentResponse struct {
	Mastery        *domain.ParentMastery `json:"mastery"`
	// ScorePercent is the overall score as a share of the parent's maximum.
	ScorePercent   int                   `json:"scorePercent"`
	LessonProgress int                   `json:"lessonProgress"`
	Accuracy       *int                  `json:"accuracy,omitempty"`
}

// WordRequest is a word dealt into a game.
type WordRequest struct {
	ID       string            `json:"id"       validate:"required"`
	ParentID string            `json:"parentId" validate:"required"`
	Text     string            `json:"text"`
	Reading  string            `json:"reading"`
	Meanings map[string]string `json:"meanings"`
}

// StartGameRequest defines the payload for starting a matching game.
type StartGameRequest struct {
	UserID       string        `json:"userId"       validate:"required"`
	Words        []WordRequest `json:"words"        validate:"required,min=1,dive"`
	ExerciseType string        `json:"exerciseType" validate:"omitempty,oneof=writing reading pairing"`
	Cards        string        `json:"cards"        validate:"omitempty,oneof=meaning reading"`
	Language     string        `json:"language"     validate:"omitempty,max=16"`
}

func (r StartGameRequest) words() []domain.Word {
	return lo.Map(r.Words, func(w WordRequest, _ int) domain.Word {
		return domain.Word{ID: w.ID, ParentID: w.ParentID, Text: w.Text, Reading: w.Reading, Meanings: w.Meanings}
	})
}

// ClickRequest names the tapped card.
type ClickRequest struct {
	CardID string `json:"cardId" validate:"required"`
}

// GameResponse is a game and its board.
type GameResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       string              `json:"userId"`
	ExerciseType domain.ExerciseType `json:"exerciseType"`
	CreatedAt    time.Time           `json:"createdAt"`
	State        pairing.Snapshot    `json:"state"`
}

// ClickResponse is the effect of a tap and the board after it.
type ClickResponse struct {
	Outcome pairing.ClickOutcome `json:"outcome"`
	State   pairing.Snapshot     `json:"state"`
}
