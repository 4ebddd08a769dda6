// Package shared holds the request and response plumbing used by every
// handler: trace IDs, JSON decoding and validation, and JSON responses.
package shared

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDKey is the context key for the request's trace ID.
	TraceIDKey contextKey = "traceID"

	// TraceIDHeader carries a caller-supplied trace ID and echoes ours back.
	TraceIDHeader = "X-Request-ID"
)

var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// NewTraceID returns a fresh trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// SetTraceID stores traceID in ctx, generating one when traceID is empty or
// not a plain token.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	if !traceIDPattern.MatchString(traceID) {
		traceID = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
