package pairing

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// manualScheduler queues scheduled work until the test runs it.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) Schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, f)
	s.delays = append(s.delays, d)
}

func (s *manualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RunNext runs the oldest pending task.
func (s *manualScheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	f := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()
	f()
	return true
}

// Flush runs pending tasks until none are left.
func (s *manualScheduler) Flush() {
	for s.RunNext() {
	}
}

func makeWords(n int) []domain.Word {
	words := make([]domain.Word, n)
	for i := range words {
		id := fmt.Sprintf("w%d", i+1)
		words[i] = domain.Word{
			ID:       id,
			ParentID: "p",
			Text:     "text-" + id,
			Reading:  "reading-" + id,
			Meanings: map[string]string{"en": "meaning-" + id, "id": "arti-" + id},
		}
	}
	return words
}

func newTestEngine(t *testing.T, n int, opts ...Option) (*Engine, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	all := append([]Option{WithShuffle(NoShuffle), WithScheduler(sched)}, opts...)
	e, err := NewEngine(makeWords(n), all...)
	require.NoError(t, err)
	return e, sched
}

func prompt(wordID string) string { return "p-" + wordID }
func answer(wordID string) string { return "a-" + wordID }

func click(t *testing.T, e *Engine, cardID string) ClickOutcome {
	t.Helper()
	outcome, err := e.HandleCardClick(cardID)
	require.NoError(t, err)
	return outcome
}

// matchWord taps both cards of a word.
func matchWord(t *testing.T, e *Engine, wordID string) ClickOutcome {
	t.Helper()
	click(t, e, prompt(wordID))
	outcome := click(t, e, answer(wordID))
	require.Equal(t, ClickMatched, outcome.Result)
	return outcome
}

// mismatch taps the prompt of one word and the answer of another.
func mismatch(t *testing.T, e *Engine, promptWord, answerWord string) ClickOutcome {
	t.Helper()
	click(t, e, prompt(promptWord))
	outcome := click(t, e, answer(answerWord))
	require.Equal(t, ClickMismatched, outcome.Result)
	return outcome
}

// matchSection matches every word left on the current board.
func matchSection(t *testing.T, e *Engine) {
	t.Helper()
	for _, c := range e.Snapshot().PromptCards {
		if !c.Matched {
			matchWord(t, e, c.WordID)
		}
	}
}
