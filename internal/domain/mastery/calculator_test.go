package mastery

import (
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func result(wordID string, et domain.ExerciseType, correct bool) domain.ExerciseResult {
	return domain.ExerciseResult{WordID: wordID, ParentID: "日", ExerciseType: et, IsCorrect: correct}
}

func TestMaxScores(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 12; n++ {
		n := n
		t.Run(fmt.Sprintf("%d words", n), func(t *testing.T) {
			t.Parallel()
			perWord := MaxScorePerWord(n)
			assert.InDelta(t, 100.0, perWord*3*float64(n), 1e-9)
			assert.InDelta(t, perWord/3, MaxScorePerExercise(n), 1e-12)
			assert.InDelta(t, float64(n)*perWord, MaxParentScore(n), 1e-12)
		})
	}

	t.Run("non-positive word counts", func(t *testing.T) {
		t.Parallel()
		for _, n := range []int{0, -1, -10} {
			assert.Zero(t, MaxScorePerWord(n))
			assert.Zero(t, MaxScorePerExercise(n))
			assert.Zero(t, MaxParentScore(n))
		}
	})
}

func TestParentScorePercent(t *testing.T) {
	t.Parallel()

	withWords := func(overall float64, n int) *domain.ParentMastery {
		p := domain.NewParentMastery("日")
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("w%d", i+1)
			p.Words[id] = &domain.WordMastery{WordID: id, ParentID: "日"}
		}
		p.OverallScore = overall
		return p
	}

	tests := []struct {
		name   string
		parent *domain.ParentMastery
		want   int
	}{
		{"nil parent", nil, 0},
		{"no words", withWords(0, 0), 0},
		{"untouched", withWords(0, 2), 0},
		{"a third of the way", withWords(100.0/9, 2), 33},
		{"fully mastered", withWords(100.0/3, 2), 100},
		{"fully mastered single word", withWords(100.0/3, 1), 100},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParentScorePercent(tt.parent))
		})
	}
}

func TestApplyResult(t *testing.T) {
	t.Parallel()

	t.Run("correct result awards full exercise credit", func(t *testing.T) {
		t.Parallel()
		got := ApplyResult(nil, result("w1", domain.ExerciseWriting, true), 2, testNow)

		assert.Equal(t, "w1", got.WordID)
		assert.Equal(t, "日", got.ParentID)
		assert.Equal(t, 1, got.TotalAttempts)
		assert.Equal(t, 1, got.CorrectAttempts)
		assert.InDelta(t, 5.56, got.ExerciseScores.Writing, 0.005)
		assert.Equal(t, got.ExerciseScores.Sum(), got.MasteryScore)
		assert.Equal(t, testNow, got.LastSeen)
	})

	t.Run("incorrect result counts attempt only", func(t *testing.T) {
		t.Parallel()
		got := ApplyResult(nil, result("w1", domain.ExerciseReading, false), 2, testNow)

		assert.Equal(t, 1, got.TotalAttempts)
		assert.Zero(t, got.CorrectAttempts)
		assert.Zero(t, got.MasteryScore)
		assert.Equal(t, testNow, got.LastSeen)
	})

	t.Run("repeating a correct result is idempotent", func(t *testing.T) {
		t.Parallel()
		r := result("w1", domain.ExercisePairing, true)
		first := ApplyResult(nil, r, 3, testNow)
		second := ApplyResult(first, r, 3, testNow.Add(time.Second))

		assert.Equal(t, first.MasteryScore, second.MasteryScore)
		assert.Equal(t, first.ExerciseScores, second.ExerciseScores)
		assert.Equal(t, 2, second.TotalAttempts)
		assert.Equal(t, 2, second.CorrectAttempts)
	})

	t.Run("does not modify input", func(t *testing.T) {
		t.Parallel()
		current := domain.NewWordMastery("w1", "日")
		_ = ApplyResult(current, result("w1", domain.ExerciseWriting, true), 1, testNow)

		assert.Zero(t, current.TotalAttempts)
		assert.Zero(t, current.MasteryScore)
		assert.True(t, current.LastSeen.IsZero())
	})

	t.Run("credit does not shrink when the parent grows", func(t *testing.T) {
		t.Parallel()
		r := result("w1", domain.ExerciseWriting, true)
		earned := ApplyResult(nil, r, 1, testNow)
		again := ApplyResult(earned, r, 4, testNow)

		assert.Equal(t, earned.ExerciseScores.Writing, again.ExerciseScores.Writing)
	})
}

func TestApplyResultMonotonic(t *testing.T) {
	t.Parallel()

	sequence := []domain.ExerciseResult{
		result("w1", domain.ExerciseWriting, false),
		result("w1", domain.ExerciseWriting, true),
		result("w1", domain.ExerciseReading, false),
		result("w1", domain.ExerciseWriting, false),
		result("w1", domain.ExerciseReading, true),
		result("w1", domain.ExercisePairing, false),
		result("w1", domain.ExerciseReading, false),
		result("w1", domain.ExercisePairing, true),
		result("w1", domain.ExerciseWriting, false),
	}

	var current *domain.WordMastery
	previous := domain.ExerciseScores{}
	for i, r := range sequence {
		current = ApplyResult(current, r, 2, testNow)
		for _, et := range domain.ExerciseTypes {
			assert.GreaterOrEqual(t, current.ExerciseScores.Get(et), previous.Get(et),
				"step %d decreased %s", i, et)
		}
		assert.Equal(t, current.ExerciseScores.Sum(), current.MasteryScore)
		previous = current.ExerciseScores
	}
	assert.Equal(t, len(sequence), current.TotalAttempts)
	assert.Equal(t, 3, current.CorrectAttempts)
}

func TestTwoWordParentFullyMastered(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	parent := domain.NewParentMastery("日")
	parent.Words["w1"] = domain.NewWordMastery("w1", "日")
	parent.Words["w2"] = domain.NewWordMastery("w2", "日")

	for i, wordID := range []string{"w1", "w2"} {
		for j, et := range domain.ExerciseTypes {
			at := testNow.Add(time.Duration(i*3+j) * time.Minute)
			parent.Words[wordID] = ApplyResult(parent.Words[wordID], result(wordID, et, true), 2, at)
		}
	}
	parent = RecomputeParent(parent, params)

	assert.InDelta(t, 5.56, MaxScorePerExercise(2), 0.005)
	assert.InDelta(t, 16.67, MaxScorePerWord(2), 0.005)
	assert.InDelta(t, 16.67, parent.Words["w1"].MasteryScore, 0.005)
	assert.InDelta(t, 16.67, parent.Words["w2"].MasteryScore, 0.005)
	assert.InDelta(t, 33.33, parent.OverallScore, 0.005)
	assert.Equal(t, domain.ColorGreen, parent.ColorCode)
	assert.Equal(t, testNow.Add(5*time.Minute), parent.LastSeen)
}

func TestRecomputeParent(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()

	t.Run("empty parent", func(t *testing.T) {
		t.Parallel()
		got := RecomputeParent(domain.NewParentMastery("月"), params)
		assert.Zero(t, got.OverallScore)
		assert.Equal(t, domain.ColorRed, got.ColorCode)
		assert.True(t, got.LastSeen.IsZero())
	})

	t.Run("nil parent", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, RecomputeParent(nil, params))
	})

	t.Run("sums children and keeps input intact", func(t *testing.T) {
		t.Parallel()
		parent := domain.NewParentMastery("日")
		parent.Words["a"] = &domain.WordMastery{WordID: "a", MasteryScore: 10, LastSeen: testNow}
		parent.Words["b"] = &domain.WordMastery{WordID: "b", MasteryScore: 5, LastSeen: testNow.Add(time.Hour)}

		got := RecomputeParent(parent, params)
		assert.Equal(t, 15.0, got.OverallScore)
		assert.Equal(t, testNow.Add(time.Hour), got.LastSeen)
		assert.Zero(t, parent.OverallScore)

		got.Words["a"].MasteryScore = 0
		assert.Equal(t, 10.0, parent.Words["a"].MasteryScore)
	})
}

func TestColorForBoundaries(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	const words = 2
	maxScore := MaxParentScore(words)

	tests := []struct {
		ratio float64
		want  domain.ColorCode
	}{
		{1.0, domain.ColorGreen},
		{0.90, domain.ColorGreen},
		{0.89999, domain.ColorYellow},
		{0.70, domain.ColorYellow},
		{0.69999, domain.ColorOrange},
		{0.40, domain.ColorOrange},
		{0.39999, domain.ColorRed},
		{0, domain.ColorRed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(fmt.Sprintf("%.5f", tc.ratio), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ColorFor(maxScore*tc.ratio, words, params))
		})
	}

	assert.Equal(t, domain.ColorRed, ColorFor(50, 0, params))
}

func TestUserProgressPercent(t *testing.T) {
	t.Parallel()

	assert.Zero(t, UserProgressPercent(nil))

	score, err := domain.NewUserScore("u", domain.LevelN5, testNow)
	require.NoError(t, err)
	assert.Zero(t, UserProgressPercent(score))

	a := domain.NewParentMastery("a")
	a.OverallScore = 33.333333333333336
	b := domain.NewParentMastery("b")
	b.OverallScore = 16.666666666666668
	score.Mastery["a"] = a
	score.Mastery["b"] = b

	// (33.33 + 16.67) / 200 * 100 = 25
	assert.Equal(t, 25, UserProgressPercent(score))
}

func TestParentAccuracy(t *testing.T) {
	t.Parallel()

	_, ok := ParentAccuracy(nil)
	assert.False(t, ok)

	parent := domain.NewParentMastery("日")
	_, ok = ParentAccuracy(parent)
	assert.False(t, ok)

	parent.Words["a"] = &domain.WordMastery{WordID: "a", TotalAttempts: 3, CorrectAttempts: 2}
	parent.Words["b"] = &domain.WordMastery{WordID: "b", TotalAttempts: 3, CorrectAttempts: 2}
	acc, ok := ParentAccuracy(parent)
	assert.True(t, ok)
	assert.Equal(t, 67, acc)
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{ReportSize: 2})
	score, err := domain.NewUserScore("u", domain.LevelN5, testNow)
	require.NoError(t, err)

	perWord := MaxScorePerWord(3)
	p := domain.NewParentMastery("日")
	p.Words["a"] = &domain.WordMastery{WordID: "a", MasteryScore: perWord}
	p.Words["b"] = &domain.WordMastery{WordID: "b", MasteryScore: perWord * 2 / 3}
	p.Words["c"] = &domain.WordMastery{WordID: "c", MasteryScore: 0}
	score.Mastery["日"] = p

	q := domain.NewParentMastery("月")
	q.Words["d"] = &domain.WordMastery{WordID: "d", MasteryScore: MaxScorePerWord(1) * 0.9}
	score.Mastery["月"] = q

	report := BuildReport(score, params)
	assert.Equal(t, 4, report.TotalWords)
	assert.Equal(t, 2, report.MasteredWords)
	assert.Equal(t, []WordRef{
		{ParentID: "日", WordID: "c", MasteryScore: 0},
		{ParentID: "日", WordID: "b", MasteryScore: perWord * 2 / 3},
	}, report.WeakWords)
	require.Len(t, report.StrongWords, 2)
	assert.Equal(t, "d", report.StrongWords[0].WordID)
	assert.Equal(t, "a", report.StrongWords[1].WordID)

	empty := BuildReport(nil, params)
	assert.Zero(t, empty.TotalWords)
	assert.Empty(t, empty.WeakWords)
	assert.NotNil(t, empty.StrongWords)
}
