package pairing

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/samber/lo"
)

// Phase is the engine's position in the game flow.
type Phase string

// Game phases. SectionComplete is transient: the engine leaves it on its own
// once the completion delay has passed.
const (
	PhasePlaying         Phase = "playing"
	PhaseSectionComplete Phase = "section_complete"
	PhaseGameComplete    Phase = "game_complete"
)

// ClickResult classifies what a tap did.
type ClickResult string

// Possible click results.
const (
	ClickIgnored    ClickResult = "ignored"
	ClickSelected   ClickResult = "selected"
	ClickReplaced   ClickResult = "replaced"
	ClickMatched    ClickResult = "matched"
	ClickMismatched ClickResult = "mismatched"
)

// ClickOutcome reports the effect of one HandleCardClick call.
type ClickOutcome struct {
	Result ClickResult `json:"result"`

	// WordIDs holds the matched word, or both words of a mismatch.
	WordIDs []string `json:"wordIds,omitempty"`

	// Penalized lists the words charged for the first time by this tap.
	Penalized []string `json:"penalized,omitempty"`

	SectionComplete bool `json:"sectionComplete"`
}

// scheduled is a delayed transition collected under the lock and handed to
// the scheduler after the lock is released.
type scheduled struct {
	delay time.Duration
	fn    func()
}

// Engine runs one matching game session. It is safe for concurrent use.
type Engine struct {
	mu   sync.Mutex
	opts Options

	// session-wide state
	allWords     []domain.Word
	retry        bool
	score        float64
	correctPairs int
	errorWords   WordSet
	phase        Phase

	// current pass and section
	sections     [][]domain.Word
	sectionIndex int
	sectionWords []domain.Word
	promptCards  []Card
	answerCards  []Card
	cards        map[string]Card
	selected     *Card
	matched      WordSet
	errorCards   WordSet
	sectionErrs  WordSet

	// bumped to invalidate timers that belong to an earlier section or flash
	sectionGen uint64
	flashGen   uint64
}

// NewEngine shuffles words once, splits them into sections and loads the
// first section.
func NewEngine(words []domain.Word, opts ...Option) (*Engine, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWord, w.ID)
		}
		seen[w.ID] = struct{}{}
	}

	all := make([]domain.Word, len(words))
	copy(all, words)
	options.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	e := &Engine{
		opts:     options,
		allWords: all,
		score:    100,
	}
	e.startPass(all, options.SectionSize)

	return e, nil
}

// startPass partitions words into sections and loads the first one.
func (e *Engine) startPass(words []domain.Word, sectionSize int) {
	e.sections = lo.Chunk(words, sectionSize)
	e.sectionIndex = 0
	e.correctPairs = 0
	e.sectionErrs = WordSet{}
	e.loadSection()
}

// loadSection resets per-section state and deals the cards for the current
// section index.
func (e *Engine) loadSection() {
	e.sectionGen++
	e.flashGen++
	e.sectionWords = e.sections[e.sectionIndex]
	e.selected = nil
	e.matched = WordSet{}
	e.errorCards = WordSet{}
	e.phase = PhasePlaying

	e.promptCards = make([]Card, 0, len(e.sectionWords))
	e.answerCards = make([]Card, 0, len(e.sectionWords))
	e.cards = make(map[string]Card, 2*len(e.sectionWords))
	for _, w := range e.sectionWords {
		prompt, answer := buildCards(w, e.opts.Cards)
		e.promptCards = append(e.promptCards, prompt)
		e.answerCards = append(e.answerCards, answer)
		e.cards[prompt.ID] = prompt
		e.cards[answer.ID] = answer
	}
	e.opts.Shuffle(len(e.promptCards), func(i, j int) {
		e.promptCards[i], e.promptCards[j] = e.promptCards[j], e.promptCards[i]
	})
	e.opts.Shuffle(len(e.answerCards), func(i, j int) {
		e.answerCards[i], e.answerCards[j] = e.answerCards[j], e.answerCards[i]
	})
}

func (e *Engine) run(tasks []scheduled) {
	for _, t := range tasks {
		e.opts.Scheduler.Schedule(t.delay, t.fn)
	}
}

// HandleCardClick processes a tap on the card with the given ID.
//
// Behavior:
//   - Taps on matched or flashing cards, and taps while a finished section
//     is waiting to advance, are ignored
//   - With nothing selected the card becomes the selection
//   - A second card from the same side replaces the selection
//   - A card from the other side either matches or mismatches the selection;
//     a mismatch flags both words as errors
func (e *Engine) HandleCardClick(cardID string) (ClickOutcome, error) {
	e.mu.Lock()
	outcome, tasks, err := e.handleClick(cardID)
	e.mu.Unlock()

	e.run(tasks)
	return outcome, err
}

func (e *Engine) handleClick(cardID string) (ClickOutcome, []scheduled, error) {
	ignored := ClickOutcome{Result: ClickIgnored}

	if e.phase == PhaseGameComplete {
		return ignored, nil, ErrGameComplete
	}
	card, ok := e.cards[cardID]
	if !ok {
		return ignored, nil, fmt.Errorf("%w: %q", ErrUnknownCard, cardID)
	}
	if e.phase != PhasePlaying || e.matched.Contains(card.WordID) || e.errorCards.Contains(card.ID) {
		return ignored, nil, nil
	}

	if e.selected == nil {
		e.selected = &card
		return ClickOutcome{Result: ClickSelected}, nil, nil
	}

	first := *e.selected
	if first.ID == card.ID {
		return ignored, nil, nil
	}
	if first.Side == card.Side {
		e.selected = &card
		return ClickOutcome{Result: ClickReplaced}, nil, nil
	}

	e.selected = nil

	if first.WordID == card.WordID {
		return e.match(card.WordID)
	}
	return e.mismatch(first, card)
}

func (e *Engine) match(wordID string) (ClickOutcome, []scheduled, error) {
	e.matched = e.matched.Add(wordID)
	e.correctPairs++

	// A matched word settles its section error into the session set; the
	// penalty already charged stays charged.
	if e.sectionErrs.Contains(wordID) {
		e.sectionErrs = e.sectionErrs.Remove(wordID)
		e.errorWords = e.errorWords.Add(wordID)
	}

	outcome := ClickOutcome{Result: ClickMatched, WordIDs: []string{wordID}}
	if e.matched.Len() < len(e.sectionWords) {
		return outcome, nil, nil
	}

	outcome.SectionComplete = true
	e.phase = PhaseSectionComplete
	gen := e.sectionGen
	return outcome, []scheduled{{
		delay: e.opts.CompletionDelay,
		fn:    func() { e.completeSection(gen) },
	}}, nil
}

func (e *Engine) mismatch(first, second Card) (ClickOutcome, []scheduled, error) {
	e.errorCards = NewWordSet(first.ID, second.ID)
	e.flashGen++

	outcome := ClickOutcome{
		Result:  ClickMismatched,
		WordIDs: []string{first.WordID, second.WordID},
	}
	for _, id := range outcome.WordIDs {
		charged := !e.errorWords.Contains(id) && !e.sectionErrs.Contains(id)
		e.addWordError(id)
		if charged {
			outcome.Penalized = append(outcome.Penalized, id)
		}
	}

	gen := e.flashGen
	return outcome, []scheduled{{
		delay: e.opts.ErrorFlashDelay,
		fn:    func() { e.clearFlash(gen) },
	}}, nil
}

// AddWordError flags wordID as wrong in the current section and reports
// whether this was the first flag for the word in this section.
func (e *Engine) AddWordError(wordID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addWordError(wordID)
}

func (e *Engine) addWordError(wordID string) bool {
	if e.sectionErrs.Contains(wordID) {
		return false
	}
	e.sectionErrs = e.sectionErrs.Add(wordID)

	penalized := e.errorWords.Union(e.sectionErrs).Len()
	perWord := 100 / float64(len(e.allWords))
	e.score = math.Max(0, 100-float64(penalized)*perWord)
	return true
}

func (e *Engine) clearFlash(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.flashGen {
		return
	}
	e.errorCards = WordSet{}
}

// completeSection merges the section's errors into the session and moves on
// to the next section or ends the pass.
func (e *Engine) completeSection(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.sectionGen || e.phase != PhaseSectionComplete {
		return
	}

	e.errorWords = e.errorWords.Union(e.sectionErrs)
	e.sectionErrs = WordSet{}

	if e.sectionIndex+1 < len(e.sections) {
		e.sectionIndex++
		e.loadSection()
		return
	}

	e.sectionGen++
	e.flashGen++
	e.selected = nil
	e.errorCards = WordSet{}
	e.retry = false
	e.phase = PhaseGameComplete
}

// StartRetryMode merges any unmerged section errors into the session and
// enters retry mode. The score is left as it is.
func (e *Engine) StartRetryMode() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canRetry() {
		return ErrNothingToRetry
	}
	e.errorWords = e.errorWords.Union(e.sectionErrs)
	e.sectionErrs = WordSet{}
	e.retry = true
	return nil
}

// GenerateRetrySession deals a new pass made of the words in the session
// error set, in smaller sections. The error set and the score carry over.
func (e *Engine) GenerateRetrySession() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.retry {
		return ErrNotInRetryMode
	}

	words := lo.Filter(e.allWords, func(w domain.Word, _ int) bool {
		return e.errorWords.Contains(w.ID)
	})
	if len(words) == 0 {
		return ErrNothingToRetry
	}
	if len(words) == 1 && e.opts.RetryDecoy {
		if decoy, ok := e.pickDecoy(); ok {
			words = append(words, decoy)
		}
	}

	e.startPass(words, e.opts.RetrySectionSize)
	return nil
}

func (e *Engine) pickDecoy() (domain.Word, bool) {
	others := lo.Reject(e.allWords, func(w domain.Word, _ int) bool {
		return e.errorWords.Contains(w.ID)
	})
	if len(others) == 0 {
		return domain.Word{}, false
	}
	e.opts.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	return others[0], true
}
