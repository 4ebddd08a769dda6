package score_session

import (
	"math"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/mastery"
	"github.com/samber/lo"
)

// Summary is the headline view of a user's progress.
type Summary struct {
	UserID          string         `json:"userId"`
	Level           domain.Level   `json:"level"`
	OverallProgress int            `json:"overallProgress"`
	ParentsLearned  int            `json:"parentsLearned"`
	MasteredParents int            `json:"masteredParents"`
	Report          mastery.Report `json:"report"`
}

// LessonProgress returns the share of exercise slots a parent's words have
// earned credit in, as a whole percentage. With a catalog the denominator is
// every word in the lesson; without one it is the words seen so far.
func (s *Session) LessonProgress(parentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return 0
	}
	parent := s.current.Mastery[parentID]
	total := s.lessonSize(parentID, parent)
	if total == 0 || parent == nil {
		return 0
	}

	var earned int
	for _, w := range parent.Words {
		for _, t := range domain.ExerciseTypes {
			if w.ExerciseScores.Get(t) > 0 {
				earned++
			}
		}
	}
	return percent(earned, total*len(domain.ExerciseTypes))
}

// ExerciseProgress returns the share of a parent's words that have earned
// credit for exerciseType. An empty parentID averages the figure across
// every tracked parent.
func (s *Session) ExerciseProgress(exerciseType domain.ExerciseType, parentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil || !exerciseType.Valid() {
		return 0
	}
	if parentID != "" {
		return s.exerciseProgress(exerciseType, parentID)
	}

	ids := s.current.ParentIDs()
	if len(ids) == 0 {
		return 0
	}
	sum := lo.SumBy(ids, func(id string) int { return s.exerciseProgress(exerciseType, id) })
	return int(math.Round(float64(sum) / float64(len(ids))))
}

func (s *Session) exerciseProgress(exerciseType domain.ExerciseType, parentID string) int {
	parent := s.current.Mastery[parentID]
	total := s.lessonSize(parentID, parent)
	if total == 0 || parent == nil {
		return 0
	}
	credited := lo.CountBy(lo.Values(parent.Words), func(w *domain.WordMastery) bool {
		return w.ExerciseScores.Get(exerciseType) > 0
	})
	return percent(credited, total)
}

// lessonSize is the number of words progress is measured against.
func (s *Session) lessonSize(parentID string, parent *domain.ParentMastery) int {
	tracked := parent.WordCount()
	if s.catalog == nil {
		return tracked
	}
	if ids, ok := s.catalog.WordIDs(parentID); ok {
		return max(len(ids), tracked)
	}
	return tracked
}

// OverallProgress returns progress across every tracked parent.
func (s *Session) OverallProgress() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calc.UserProgressPercent(s.current)
}

// ParentMastery returns a copy of one parent's mastery.
func (s *Session) ParentMastery(parentID string) (*domain.ParentMastery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, false
	}
	p, ok := s.current.Mastery[parentID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ParentAccuracy returns the share of correct attempts on a parent's words.
// ok is false for an unknown parent or one with no attempts.
func (s *Session) ParentAccuracy(parentID string) (accuracy int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return 0, false
	}
	return mastery.ParentAccuracy(s.current.Mastery[parentID])
}

// Summary returns the headline progress figures. ok is false before
// initialisation.
func (s *Session) Summary() (summary Summary, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Summary{}, false
	}
	mastered := lo.CountBy(lo.Values(s.current.Mastery), func(p *domain.ParentMastery) bool {
		return p.ColorCode == domain.ColorGreen
	})
	return Summary{
		UserID:          s.current.UserID,
		Level:           s.current.Level,
		OverallProgress: s.calc.UserProgressPercent(s.current),
		ParentsLearned:  len(s.current.Mastery),
		MasteredParents: mastered,
		Report:          s.calc.Report(s.current),
	}, true
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
