package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playWithMistakes finishes a six-word game where w1 and w2 were confused once.
func playWithMistakes(t *testing.T, opts ...Option) (*Engine, *manualScheduler) {
	t.Helper()
	e, sched := newTestEngine(t, 6, opts...)

	mismatch(t, e, "w1", "w2")
	sched.Flush()
	matchSection(t, e)
	sched.Flush()
	matchSection(t, e)
	sched.Flush()
	require.Equal(t, PhaseGameComplete, e.Phase())
	require.Equal(t, 67, e.Score())
	return e, sched
}

func TestRetryNeverRaisesScore(t *testing.T) {
	t.Parallel()

	e, sched := playWithMistakes(t)
	require.True(t, e.CanRetry())

	require.NoError(t, e.StartRetryMode())
	assert.True(t, e.IsRetryMode())
	assert.Equal(t, 67, e.Score())

	require.NoError(t, e.GenerateRetrySession())
	assert.Equal(t, PhasePlaying, e.Phase())
	assert.Equal(t, 1, e.TotalSections())
	assert.Equal(t, 1, e.CurrentSectionNumber())
	assert.Equal(t, 0, e.CorrectPairs())
	assert.Equal(t, 6, e.TotalWordsInSession())

	snap := e.Snapshot()
	require.Len(t, snap.PromptCards, 2)
	assert.Equal(t, "w1", snap.PromptCards[0].WordID)
	assert.Equal(t, "w2", snap.PromptCards[1].WordID)

	// mistakes on words already charged cost nothing more
	outcome := mismatch(t, e, "w2", "w1")
	assert.Empty(t, outcome.Penalized)
	assert.Equal(t, 67, e.Score())
	sched.Flush()

	matchSection(t, e)
	sched.Flush()

	assert.Equal(t, PhaseGameComplete, e.Phase())
	assert.False(t, e.IsRetryMode())
	assert.Equal(t, 67, e.Score())
	assert.Equal(t, 2, e.CorrectPairs())
	assert.ElementsMatch(t, []string{"w1", "w2"}, e.ErrorWords().Slice())
}

func TestRetryUsesRetrySectionSize(t *testing.T) {
	t.Parallel()

	e, sched := newTestEngine(t, 6, WithRetrySectionSize(2))
	mismatch(t, e, "w1", "w2")
	sched.Flush()
	mismatch(t, e, "w3", "w4")
	sched.Flush()
	matchSection(t, e)
	sched.Flush()
	matchSection(t, e)
	sched.Flush()

	require.NoError(t, e.StartRetryMode())
	require.NoError(t, e.GenerateRetrySession())
	assert.Equal(t, 2, e.TotalSections())
	assert.InDelta(t, 50.0, e.ProgressPercent(), 1e-9)

	matchSection(t, e)
	sched.Flush()
	assert.Equal(t, 2, e.CurrentSectionNumber())
	assert.True(t, e.IsRetryMode())
}

func TestStartRetryModeMergesSectionErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 6)
	mismatch(t, e, "w1", "w3")

	require.True(t, e.CanRetry())
	require.NoError(t, e.StartRetryMode())
	require.NoError(t, e.GenerateRetrySession())

	snap := e.Snapshot()
	require.Len(t, snap.PromptCards, 2)
	assert.Equal(t, "w1", snap.PromptCards[0].WordID)
	assert.Equal(t, "w3", snap.PromptCards[1].WordID)
	assert.Equal(t, 67, snap.Score)
}

func TestRetryErrors(t *testing.T) {
	t.Parallel()

	e, sched := newTestEngine(t, 2)
	assert.ErrorIs(t, e.StartRetryMode(), ErrNothingToRetry)
	assert.ErrorIs(t, e.GenerateRetrySession(), ErrNotInRetryMode)

	matchSection(t, e)
	sched.Flush()
	assert.False(t, e.CanRetry())
	assert.ErrorIs(t, e.StartRetryMode(), ErrNothingToRetry)
}

func TestRetryDecoy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		decoy     bool
		wantWords []string
	}{
		{"without decoy", false, []string{"w2"}},
		{"with decoy", true, []string{"w2", "w1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, sched := newTestEngine(t, 3, WithRetryDecoy(tc.decoy))
			e.AddWordError("w2")
			matchSection(t, e)
			sched.Flush()

			require.NoError(t, e.StartRetryMode())
			require.NoError(t, e.GenerateRetrySession())

			var got []string
			for _, c := range e.Snapshot().PromptCards {
				got = append(got, c.WordID)
			}
			assert.Equal(t, tc.wantWords, got)
			assert.Equal(t, []string{"w2"}, e.ErrorWords().Slice())
		})
	}
}

func TestRetryDiscardsPendingSectionCompletion(t *testing.T) {
	t.Parallel()

	e, sched := newTestEngine(t, 4, WithSectionSize(2))
	mismatch(t, e, "w1", "w2")
	sched.Flush()
	matchSection(t, e)
	require.Equal(t, PhaseSectionComplete, e.Phase())

	require.NoError(t, e.StartRetryMode())
	require.NoError(t, e.GenerateRetrySession())

	// the completion queued by the abandoned pass must not advance the retry pass
	sched.Flush()
	assert.Equal(t, PhasePlaying, e.Phase())
	assert.Equal(t, 1, e.CurrentSectionNumber())
	assert.Equal(t, 0, e.CorrectPairs())
}
