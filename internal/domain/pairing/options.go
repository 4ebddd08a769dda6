package pairing

import (
	"math/rand/v2"
	"time"
)

// Defaults used when no option overrides them.
const (
	DefaultSectionSize      = 5
	DefaultRetrySectionSize = 4
	DefaultCompletionDelay  = 500 * time.Millisecond
	DefaultErrorFlashDelay  = 800 * time.Millisecond
)

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	Schedule(d time.Duration, f func())
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// ImmediateScheduler runs scheduled work synchronously, ignoring the delay.
// It suits callers that have no use for UI pauses, such as tests and batch
// replays.
type ImmediateScheduler struct{}

// Schedule implements Scheduler.
func (ImmediateScheduler) Schedule(_ time.Duration, f func()) {
	f()
}

// ShuffleFunc permutes n elements through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// NoShuffle leaves every order as given.
func NoShuffle(int, func(i, j int)) {}

// Options configures an Engine.
type Options struct {
	SectionSize      int
	RetrySectionSize int
	CompletionDelay  time.Duration
	ErrorFlashDelay  time.Duration
	Cards            CardFactory
	Scheduler        Scheduler
	Shuffle          ShuffleFunc

	// RetryDecoy adds one correctly answered word to a retry pass that would
	// otherwise hold a single word, so the board still offers a choice.
	RetryDecoy bool
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the options used by NewEngine before any Option is applied.
func DefaultOptions() Options {
	return Options{
		SectionSize:      DefaultSectionSize,
		RetrySectionSize: DefaultRetrySectionSize,
		CompletionDelay:  DefaultCompletionDelay,
		ErrorFlashDelay:  DefaultErrorFlashDelay,
		Cards:            MeaningCards{},
		Scheduler:        TimerScheduler{},
		Shuffle:          rand.Shuffle,
	}
}

// WithSectionSize sets the number of words per section in the main pass.
func WithSectionSize(n int) Option {
	return func(o *Options) { o.SectionSize = n }
}

// WithRetrySectionSize sets the number of words per section in a retry pass.
func WithRetrySectionSize(n int) Option {
	return func(o *Options) { o.RetrySectionSize = n }
}

// WithCompletionDelay sets the pause between the last match of a section and
// the next section.
func WithCompletionDelay(d time.Duration) Option {
	return func(o *Options) { o.CompletionDelay = d }
}

// WithErrorFlashDelay sets how long mismatched cards stay flagged.
func WithErrorFlashDelay(d time.Duration) Option {
	return func(o *Options) { o.ErrorFlashDelay = d }
}

// WithCardFactory sets the card labelling strategy.
func WithCardFactory(f CardFactory) Option {
	return func(o *Options) {
		if f != nil {
			o.Cards = f
		}
	}
}

// WithScheduler sets the scheduler for delayed transitions.
func WithScheduler(s Scheduler) Option {
	return func(o *Options) {
		if s != nil {
			o.Scheduler = s
		}
	}
}

// WithShuffle sets the shuffle used for word order and card layout.
func WithShuffle(f ShuffleFunc) Option {
	return func(o *Options) {
		if f != nil {
			o.Shuffle = f
		}
	}
}

// WithRetryDecoy enables the single-word retry decoy.
func WithRetryDecoy(enabled bool) Option {
	return func(o *Options) { o.RetryDecoy = enabled }
}

// WithOptions replaces every option at once.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		defaults := DefaultOptions()
		*o = opts
		if o.Cards == nil {
			o.Cards = defaults.Cards
		}
		if o.Scheduler == nil {
			o.Scheduler = defaults.Scheduler
		}
		if o.Shuffle == nil {
			o.Shuffle = defaults.Shuffle
		}
	}
}

func (o Options) validate() error {
	if o.SectionSize <= 0 || o.RetrySectionSize <= 0 {
		return ErrInvalidSectionSize
	}
	if o.CompletionDelay < 0 || o.ErrorFlashDelay < 0 {
		return ErrInvalidDelay
	}
	return nil
}
