// Package mastery implements the scoring rules that turn exercise results
// into per-word and per-parent mastery.
//
// Every word under a parent can earn credit once for each exercise type. The
// credit for one exercise is sized so that a parent whose words have all been
// answered correctly in every exercise reaches its maximum attainable score.
// All functions are pure: they take the current records and the time of the
// update and return new records, leaving their inputs untouched.
package mastery
