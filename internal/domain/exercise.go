package domain

import "fmt"

// ExerciseType identifies which kind of exercise produced a result.
type ExerciseType string

// Supported exercise types. Every word can earn credit once per type.
const (
	ExerciseWriting ExerciseType = "writing"
	ExerciseReading ExerciseType = "reading"
	ExercisePairing ExerciseType = "pairing"
)

// ExerciseTypes lists all exercise types in their canonical order.
var ExerciseTypes = []ExerciseType{ExerciseWriting, ExerciseReading, ExercisePairing}

// Valid reports whether t is one of the supported exercise types.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseWriting, ExerciseReading, ExercisePairing:
		return true
	}
	return false
}

// ParseExerciseType converts a raw string into an ExerciseType.
func ParseExerciseType(s string) (ExerciseType, error) {
	t := ExerciseType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidExerciseType, s)
	}
	return t, nil
}

// ExerciseResult is the outcome of one exercise attempt on one word.
// It is folded into the word's mastery record and then discarded.
type ExerciseResult struct {
	WordID       string       `json:"wordId"`
	ParentID     string       `json:"parentId"`
	ExerciseType ExerciseType `json:"exerciseType"`
	IsCorrect    bool         `json:"isCorrect"`
}

// Validate checks that the result references a word, a parent and a known
// exercise type.
func (r ExerciseResult) Validate() error {
	if r.WordID == "" {
		return ErrEmptyWordID
	}
	if r.ParentID == "" {
		return ErrEmptyParentID
	}
	if !r.ExerciseType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidExerciseType, r.ExerciseType)
	}
	return nil
}
