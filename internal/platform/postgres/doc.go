// Package postgres provides the PostgreSQL implementation of
// store.ScoreStore. Each user's record is kept as one JSONB document in the
// user_scores table, whose schema ships as embedded goose migrations.
package postgres
