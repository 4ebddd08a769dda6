package mastery

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
)

// Common errors
var (
	ErrNilMastery    = errors.New("mastery record cannot be nil")
	ErrInvalidResult = errors.New("invalid exercise result")
)

// Service defines the interface for mastery calculations
type Service interface {
	// ApplyResult folds one result into a word's mastery
	ApplyResult(
		current *domain.WordMastery,
		result domain.ExerciseResult,
		totalWords int,
		now time.Time,
	) (*domain.WordMastery, error)

	// RecomputeParent derives a parent's aggregate values from its words
	RecomputeParent(parent *domain.ParentMastery) (*domain.ParentMastery, error)

	// UserProgressPercent returns overall progress across all parents
	UserProgressPercent(score *domain.UserScore) int

	// Report summarises word-level mastery
	Report(score *domain.UserScore) Report

	// Params exposes the thresholds in use
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new mastery service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new mastery service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// ApplyResult implements the Service interface
func (s *defaultService) ApplyResult(
	current *domain.WordMastery,
	result domain.ExerciseResult,
	totalWords int,
	now time.Time,
) (*domain.WordMastery, error) {
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	if current != nil && current.WordID != result.WordID {
		return nil, fmt.Errorf("%w: result for word %q applied to word %q",
			ErrInvalidResult, result.WordID, current.WordID)
	}

	return ApplyResult(current, result, totalWords, now), nil
}

// RecomputeParent implements the Service interface
func (s *defaultService) RecomputeParent(parent *domain.ParentMastery) (*domain.ParentMastery, error) {
	if parent == nil {
		return nil, ErrNilMastery
	}

	return RecomputeParent(parent, s.params), nil
}

// UserProgressPercent implements the Service interface
func (s *defaultService) UserProgressPercent(score *domain.UserScore) int {
	return UserProgressPercent(score)
}

// Report implements the Service interface
func (s *defaultService) Report(score *domain.UserScore) Report {
	return BuildReport(score, s.params)
}

// Params implements the Service interface
func (s *defaultService) Params() Params {
	return *s.params
}
