package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	payload := ResultsRecordedPayload{
		ParentIDs:       []string{"日", "月"},
		ResultCount:     3,
		OverallProgress: 12,
	}

	event, err := NewEvent(TypeResultsRecorded, "u1", payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeResultsRecorded, event.Type)
	assert.Equal(t, "u1", event.UserID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded ResultsRecordedPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewEvent(TypeGameCompleted, "u1", make(chan int))
	assert.Error(t, err)
}

func TestScoreResetPayloadOmitsEmptyParents(t *testing.T) {
	t.Parallel()

	event, err := NewEvent(TypeScoreReset, "u1", ScoreResetPayload{Level: "N5"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"N5"}`, string(event.Payload))
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *Event
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(_ context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	t.Parallel()

	var got *Event
	h := HandlerFunc(func(_ context.Context, e *Event) error {
		got = e
		return errors.New("boom")
	})

	event, err := NewEvent(TypeScoreReset, "u1", ScoreResetPayload{Level: "N5"})
	require.NoError(t, err)

	assert.EqualError(t, h.HandleEvent(context.Background(), event), "boom")
	assert.Same(t, event, got)
}
