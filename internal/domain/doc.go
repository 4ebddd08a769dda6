// Package domain contains the core learning entities of the application:
// words grouped under a parent (a kanji or a vocabulary category), the
// per-user mastery records built from exercise results, and the results
// themselves. It is independent of any storage or delivery mechanism.
//
// Scoring math lives in the mastery subpackage and the matching game state
// machine lives in the pairing subpackage; both operate on these types.
package domain
