package domain

import (
	"fmt"
	"sort"
	"time"
)

// Level is a JLPT level. A user keeps one score record per level.
type Level string

// JLPT levels from easiest to hardest.
const (
	LevelN5 Level = "N5"
	LevelN4 Level = "N4"
	LevelN3 Level = "N3"
	LevelN2 Level = "N2"
	LevelN1 Level = "N1"
)

// DefaultLevel is used when no level is supplied.
const DefaultLevel = LevelN5

// Valid reports whether l is a known JLPT level.
func (l Level) Valid() bool {
	switch l {
	case LevelN5, LevelN4, LevelN3, LevelN2, LevelN1:
		return true
	}
	return false
}

// UserScore is the root persisted record: all mastery a user has earned,
// keyed by parent ID.
type UserScore struct {
	UserID    string                    `json:"userId"`
	Level     Level                     `json:"level"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
	Mastery   map[string]*ParentMastery `json:"mastery"`
}

// NewUserScore creates an empty score record. An empty level defaults to N5.
func NewUserScore(userID string, level Level, now time.Time) (*UserScore, error) {
	if level == "" {
		level = DefaultLevel
	}
	s := &UserScore{
		UserID:    userID,
		Level:     level,
		CreatedAt: now,
		UpdatedAt: now,
		Mastery:   make(map[string]*ParentMastery),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ownership, level and that every map key matches the ID of
// the entry it indexes.
func (s *UserScore) Validate() error {
	if s.UserID == "" {
		return ErrEmptyUserID
	}
	if !s.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, s.Level)
	}
	for id, p := range s.Mastery {
		if p == nil || p.ParentID != id {
			return fmt.Errorf("%w: parent %q", ErrMismatchedKey, id)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers never share nested maps with a store
// or a session cache.
func (s *UserScore) Clone() *UserScore {
	if s == nil {
		return nil
	}
	c := *s
	c.Mastery = make(map[string]*ParentMastery, len(s.Mastery))
	for id, p := range s.Mastery {
		c.Mastery[id] = p.Clone()
	}
	return &c
}

// ParentIDs returns the tracked parent IDs in sorted order.
func (s *UserScore) ParentIDs() []string {
	ids := make([]string, 0, len(s.Mastery))
	for id := range s.Mastery {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
