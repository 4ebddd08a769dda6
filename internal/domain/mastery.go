package domain

import (
	"fmt"
	"time"
)

// ColorCode is the badge colour derived from a parent's overall score.
type ColorCode string

// Colour bands, from fully mastered to barely started.
const (
	ColorGreen  ColorCode = "green"
	ColorYellow ColorCode = "yellow"
	ColorOrange ColorCode = "orange"
	ColorRed    ColorCode = "red"
)

// ExerciseScores holds the credit a word has earned per exercise type.
type ExerciseScores struct {
	Writing float64 `json:"writing"`
	Reading float64 `json:"reading"`
	Pairing float64 `json:"pairing"`
}

// Get returns the score for the given exercise type, or 0 for an unknown type.
func (s ExerciseScores) Get(t ExerciseType) float64 {
	switch t {
	case ExerciseWriting:
		return s.Writing
	case ExerciseReading:
		return s.Reading
	case ExercisePairing:
		return s.Pairing
	}
	return 0
}

// Set returns a copy of s with the score for t replaced.
func (s ExerciseScores) Set(t ExerciseType, v float64) ExerciseScores {
	switch t {
	case ExerciseWriting:
		s.Writing = v
	case ExerciseReading:
		s.Reading = v
	case ExercisePairing:
		s.Pairing = v
	}
	return s
}

// Sum returns the total across all exercise types.
func (s ExerciseScores) Sum() float64 {
	return s.Writing + s.Reading + s.Pairing
}

// WordMastery is one user's progress on one word.
//
// MasteryScore always equals ExerciseScores.Sum(). Exercise scores are only
// ever awarded, never revoked.
type WordMastery struct {
	WordID          string         `json:"wordId"`
	ParentID        string         `json:"parentId,omitempty"`
	MasteryScore    float64        `json:"masteryScore"`
	ExerciseScores  ExerciseScores `json:"exerciseScores"`
	TotalAttempts   int            `json:"totalAttempts"`
	CorrectAttempts int            `json:"correctAttempts"`
	LastSeen        time.Time      `json:"lastSeen"`
}

// NewWordMastery creates a zeroed mastery record for a word.
func NewWordMastery(wordID, parentID string) *WordMastery {
	return &WordMastery{WordID: wordID, ParentID: parentID}
}

// Clone returns a copy of the record.
func (w *WordMastery) Clone() *WordMastery {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}

// ParentMastery aggregates the mastery of every word under one kanji or
// vocabulary category. OverallScore, ColorCode and LastSeen are derived from
// Words and are recomputed whenever a word changes.
type ParentMastery struct {
	ParentID     string                  `json:"parentId"`
	OverallScore float64                 `json:"overallScore"`
	ColorCode    ColorCode               `json:"colorCode"`
	LastSeen     time.Time               `json:"lastSeen"`
	Words        map[string]*WordMastery `json:"words"`
}

// NewParentMastery creates an empty parent entry.
func NewParentMastery(parentID string) *ParentMastery {
	return &ParentMastery{
		ParentID:  parentID,
		ColorCode: ColorRed,
		Words:     make(map[string]*WordMastery),
	}
}

// WordCount returns the number of words tracked under the parent.
func (p *ParentMastery) WordCount() int {
	if p == nil {
		return 0
	}
	return len(p.Words)
}

// Clone returns a deep copy of the parent and its words.
func (p *ParentMastery) Clone() *ParentMastery {
	if p == nil {
		return nil
	}
	c := *p
	c.Words = make(map[string]*WordMastery, len(p.Words))
	for id, w := range p.Words {
		c.Words[id] = w.Clone()
	}
	return &c
}

// Validate checks that every word is keyed by its own ID.
func (p *ParentMastery) Validate() error {
	if p.ParentID == "" {
		return ErrEmptyParentID
	}
	for id, w := range p.Words {
		if w == nil || w.WordID != id {
			return fmt.Errorf("%w: word %q in parent %q", ErrMismatchedKey, id, p.ParentID)
		}
	}
	return nil
}
