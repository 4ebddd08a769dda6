package pairing

import (
	"math"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/samber/lo"
)

// Score returns the session score rounded to a whole number.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(math.Round(e.score))
}

// CorrectPairs returns the number of pairs matched in the current pass.
func (e *Engine) CorrectPairs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.correctPairs
}

// Phase returns the current game phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// IsRetryMode reports whether a retry pass is in progress.
func (e *Engine) IsRetryMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retry
}

// ErrorWords returns every word that has been wrong at least once, including
// errors of the current section that have not been merged yet.
func (e *Engine) ErrorWords() WordSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorWords.Union(e.sectionErrs)
}

// ProgressPercent returns the share of sections reached in the current pass.
func (e *Engine) ProgressPercent() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressPercent()
}

func (e *Engine) progressPercent() float64 {
	if len(e.sections) == 0 {
		return 0
	}
	return float64(e.sectionIndex+1) / float64(len(e.sections)) * 100
}

// TotalSections returns the number of sections in the current pass.
func (e *Engine) TotalSections() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sections)
}

// CurrentSectionNumber returns the 1-based number of the current section.
func (e *Engine) CurrentSectionNumber() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sectionIndex + 1
}

// IsCurrentSectionComplete reports whether every word of the current
// section has been matched.
func (e *Engine) IsCurrentSectionComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isSectionComplete()
}

func (e *Engine) isSectionComplete() bool {
	return len(e.sectionWords) > 0 && e.matched.Len() == len(e.sectionWords)
}

// CanRetry reports whether any word has been wrong in this session.
func (e *Engine) CanRetry() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canRetry()
}

func (e *Engine) canRetry() bool {
	return e.errorWords.Union(e.sectionErrs).Len() > 0
}

// TotalWordsInSession returns the size of the original word list.
func (e *Engine) TotalWordsInSession() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.allWords)
}

// Results converts the session into one exercise result per word. A word is
// correct unless it was ever wrong during the session.
func (e *Engine) Results(exerciseType domain.ExerciseType) []domain.ExerciseResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	wrong := e.errorWords.Union(e.sectionErrs)
	return lo.Map(e.allWords, func(w domain.Word, _ int) domain.ExerciseResult {
		return domain.ExerciseResult{
			WordID:       w.ID,
			ParentID:     w.ParentID,
			ExerciseType: exerciseType,
			IsCorrect:    !wrong.Contains(w.ID),
		}
	})
}

// CardState is a card together with its current board status.
type CardState struct {
	Card
	Matched  bool `json:"matched"`
	Selected bool `json:"selected"`
	Flashing bool `json:"flashing"`
}

// Snapshot is a consistent, copied view of the engine for rendering.
type Snapshot struct {
	Phase           Phase       `json:"phase"`
	RetryMode       bool        `json:"retryMode"`
	Score           int         `json:"score"`
	CorrectPairs    int         `json:"correctPairs"`
	SectionNumber   int         `json:"sectionNumber"`
	TotalSections   int         `json:"totalSections"`
	ProgressPercent float64     `json:"progressPercent"`
	SectionComplete bool        `json:"sectionComplete"`
	CanRetry        bool        `json:"canRetry"`
	TotalWords      int         `json:"totalWords"`
	ErrorWords      WordSet     `json:"errorWords"`
	PromptCards     []CardState `json:"promptCards"`
	AnswerCards     []CardState `json:"answerCards"`
}

// Snapshot returns the current state of the board and the session.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := func(cards []Card) []CardState {
		return lo.Map(cards, func(c Card, _ int) CardState {
			return CardState{
				Card:     c,
				Matched:  e.matched.Contains(c.WordID),
				Selected: e.selected != nil && e.selected.ID == c.ID,
				Flashing: e.errorCards.Contains(c.ID),
			}
		})
	}

	return Snapshot{
		Phase:           e.phase,
		RetryMode:       e.retry,
		Score:           int(math.Round(e.score)),
		CorrectPairs:    e.correctPairs,
		SectionNumber:   e.sectionIndex + 1,
		TotalSections:   len(e.sections),
		ProgressPercent: e.progressPercent(),
		SectionComplete: e.isSectionComplete(),
		CanRetry:        e.canRetry(),
		TotalWords:      len(e.allWords),
		ErrorWords:      e.errorWords.Union(e.sectionErrs),
		PromptCards:     view(e.promptCards),
		AnswerCards:     view(e.answerCards),
	}
}
