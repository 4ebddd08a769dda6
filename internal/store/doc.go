// Package store defines the persistence contract for user score records.
//
// A score record is stored and replaced as a whole: there is no partial
// update at this layer, and all merging happens in the caller before a Put.
// Implementations live under internal/platform (postgres, sqlite, redis and
// memory) and are selected per deployment by configuration.
package store
