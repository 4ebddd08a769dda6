package mastery

import (
	"math"
	"sort"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
)

// thresholdEpsilon absorbs float summation error when an overall score sits
// exactly on a colour boundary.
const thresholdEpsilon = 1e-9

// MaxScorePerWord returns the credit one word can earn across all exercise
// types when its parent tracks totalWords words. It returns 0 for a parent
// with no words.
func MaxScorePerWord(totalWords int) float64 {
	if totalWords <= 0 {
		return 0
	}
	return TotalScore / float64(totalWords*len(domain.ExerciseTypes))
}

// MaxScorePerExercise returns the credit one correct exercise earns for a
// word whose parent tracks totalWords words.
func MaxScorePerExercise(totalWords int) float64 {
	return MaxScorePerWord(totalWords) / float64(len(domain.ExerciseTypes))
}

// MaxParentScore returns the highest overall score a parent with totalWords
// words can reach.
func MaxParentScore(totalWords int) float64 {
	return float64(totalWords) * MaxScorePerWord(totalWords)
}

// ParentScorePercent scales a parent's overall score against MaxParentScore
// to a rounded 0-100 percentage.
func ParentScorePercent(parent *domain.ParentMastery) int {
	if parent == nil {
		return 0
	}
	maxScore := MaxParentScore(len(parent.Words))
	if maxScore == 0 {
		return 0
	}
	return int(math.Round(math.Min(100, 100*parent.OverallScore/maxScore)))
}

// ApplyResult folds one exercise result into a word's mastery.
//
// Parameters:
//   - current: The word's current mastery; nil is treated as a fresh record
//   - result: The exercise result to apply
//   - totalWords: The number of words currently tracked under the word's parent
//   - now: The time of the update
//
// Returns:
//   - A new WordMastery; the input is never modified
//
// Behavior:
//   - Every result counts as an attempt
//   - A correct result awards full credit for its exercise type; repeating it
//     leaves the score unchanged
//   - An incorrect result never removes credit that was already earned
//   - Credit never shrinks, even when the parent has grown since it was earned
func ApplyResult(
	current *domain.WordMastery,
	result domain.ExerciseResult,
	totalWords int,
	now time.Time,
) *domain.WordMastery {
	updated := current.Clone()
	if updated == nil {
		updated = domain.NewWordMastery(result.WordID, result.ParentID)
	}

	updated.TotalAttempts++
	if result.IsCorrect {
		updated.CorrectAttempts++
		award := MaxScorePerExercise(totalWords)
		if award > updated.ExerciseScores.Get(result.ExerciseType) {
			updated.ExerciseScores = updated.ExerciseScores.Set(result.ExerciseType, award)
		}
	}

	updated.MasteryScore = updated.ExerciseScores.Sum()
	updated.LastSeen = now

	return updated
}

// RecomputeParent derives a parent's overall score, colour and last-seen time
// from its words. A parent with no words gets zero values and the lowest band.
func RecomputeParent(parent *domain.ParentMastery, params *Params) *domain.ParentMastery {
	updated := parent.Clone()
	if updated == nil {
		return nil
	}

	var overall float64
	var lastSeen time.Time
	for _, w := range updated.Words {
		overall += w.MasteryScore
		if w.LastSeen.After(lastSeen) {
			lastSeen = w.LastSeen
		}
	}

	updated.OverallScore = overall
	updated.LastSeen = lastSeen
	updated.ColorCode = ColorFor(overall, len(updated.Words), params)

	return updated
}

// ColorFor maps an overall score to a colour band relative to the maximum a
// parent with totalWords words can reach.
func ColorFor(overall float64, totalWords int, params *Params) domain.ColorCode {
	maxScore := MaxParentScore(totalWords)
	if maxScore <= 0 {
		return domain.ColorRed
	}

	reaches := func(threshold float64) bool {
		return overall+thresholdEpsilon >= maxScore*threshold
	}

	switch {
	case reaches(params.GreenThreshold):
		return domain.ColorGreen
	case reaches(params.YellowThreshold):
		return domain.ColorYellow
	case reaches(params.OrangeThreshold):
		return domain.ColorOrange
	default:
		return domain.ColorRed
	}
}

// UserProgressPercent returns overall progress across every tracked parent as
// a whole percentage. A record with no parents has 0 progress.
func UserProgressPercent(score *domain.UserScore) int {
	if score == nil || len(score.Mastery) == 0 {
		return 0
	}

	var total float64
	for _, p := range score.Mastery {
		total += p.OverallScore
	}

	return int(math.Round(total / (float64(len(score.Mastery)) * TotalScore) * 100))
}

// ParentAccuracy returns the share of correct attempts across a parent's
// words as a whole percentage. ok is false when nothing has been attempted.
func ParentAccuracy(parent *domain.ParentMastery) (accuracy int, ok bool) {
	if parent == nil {
		return 0, false
	}

	var correct, total int
	for _, w := range parent.Words {
		correct += w.CorrectAttempts
		total += w.TotalAttempts
	}
	if total == 0 {
		return 0, false
	}

	return int(math.Round(float64(correct) / float64(total) * 100)), true
}

// WordRef identifies a word in a report together with its current score.
type WordRef struct {
	ParentID     string  `json:"parentId"`
	WordID       string  `json:"wordId"`
	MasteryScore float64 `json:"masteryScore"`
}

// Report summarises a user's word-level mastery.
type Report struct {
	TotalWords    int       `json:"totalWords"`
	MasteredWords int       `json:"masteredWords"`
	WeakWords     []WordRef `json:"weakWords"`
	StrongWords   []WordRef `json:"strongWords"`
}

// BuildReport collects word-level statistics across every parent. A word is
// mastered once it holds at least params.MasteredWordRatio of the per-word
// maximum for its parent.
func BuildReport(score *domain.UserScore, params *Params) Report {
	report := Report{WeakWords: []WordRef{}, StrongWords: []WordRef{}}
	if score == nil {
		return report
	}

	var refs []WordRef
	for parentID, p := range score.Mastery {
		perWord := MaxScorePerWord(len(p.Words))
		for wordID, w := range p.Words {
			refs = append(refs, WordRef{ParentID: parentID, WordID: wordID, MasteryScore: w.MasteryScore})
			if perWord > 0 && w.MasteryScore+thresholdEpsilon >= perWord*params.MasteredWordRatio {
				report.MasteredWords++
			}
		}
	}
	report.TotalWords = len(refs)

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].MasteryScore != refs[j].MasteryScore {
			return refs[i].MasteryScore < refs[j].MasteryScore
		}
		if refs[i].ParentID != refs[j].ParentID {
			return refs[i].ParentID < refs[j].ParentID
		}
		return refs[i].WordID < refs[j].WordID
	})

	n := min(params.ReportSize, len(refs))
	report.WeakWords = append(report.WeakWords, refs[:n]...)
	for i := len(refs) - 1; i >= len(refs)-n; i-- {
		report.StrongWords = append(report.StrongWords, refs[i])
	}

	return report
}
