// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyUserID is returned when a score record has no owner.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrEmptyWordID is returned when a word or result carries no word ID.
	ErrEmptyWordID = errors.New("word ID cannot be empty")

	// ErrEmptyParentID is returned when a result or mastery entry carries no parent ID.
	ErrEmptyParentID = errors.New("parent ID cannot be empty")

	// ErrInvalidExerciseType is returned for an exercise type other than
	// writing, reading or pairing.
	ErrInvalidExerciseType = errors.New("invalid exercise type")

	// ErrInvalidLevel is returned for a level outside N5..N1.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrMismatchedKey is returned when a map key disagrees with the ID
	// stored inside the value it indexes.
	ErrMismatchedKey = errors.New("mastery key does not match entry ID")
)
