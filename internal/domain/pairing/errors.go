package pairing

import "errors"

// Engine errors.
var (
	ErrNoWords            = errors.New("pairing game needs at least one word")
	ErrDuplicateWord      = errors.New("duplicate word in pairing game")
	ErrInvalidSectionSize = errors.New("section size must be positive")
	ErrInvalidDelay       = errors.New("delays cannot be negative")
	ErrUnknownCard        = errors.New("card is not on the current board")
	ErrGameComplete       = errors.New("game is already complete")
	ErrNothingToRetry     = errors.New("no wrong words to retry")
	ErrNotInRetryMode     = errors.New("retry mode has not been started")
	ErrUnknownCardFactory = errors.New("unknown card factory")
)
