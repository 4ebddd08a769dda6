// Package pairing implements the matching game: a word list is split into
// fixed-size sections, each section shows one prompt card and one answer card
// per word, and the player pairs them up.
//
// The Engine is a state machine driven by HandleCardClick. Mistakes cost
// points once per word for the whole session; a retry pass over the words
// that were ever wrong can follow the main pass but never raises the score.
// Timed UI feedback (error flashes, the pause after a completed section) is
// delegated to a Scheduler so tests can drive time explicitly.
package pairing
