// Package score_session orchestrates the mastery calculator and a score store
// for one user at a time.
//
// A Session loads or creates the user's record, folds batches of exercise
// results into it with one write per batch, and answers progress queries from
// its cached copy. Storage failures are logged, remembered in Err and
// returned to the caller; they never leave the cache half-updated.
package score_session
