package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeResultsRecorded is emitted after a batch of exercise results is persisted.
	TypeResultsRecorded = "score.results_recorded"

	// TypeScoreReset is emitted after a whole record or some parents are cleared.
	TypeScoreReset = "score.reset"

	// TypeGameCompleted is emitted when a pairing game is finished.
	TypeGameCompleted = "game.completed"
)

// Event is a notification that something happened to a user's data.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// UserID is the user the event concerns
	UserID string `json:"userId"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"createdAt"`
}

// ResultsRecordedPayload accompanies TypeResultsRecorded.
type ResultsRecordedPayload struct {
	ParentIDs       []string `json:"parentIds"`
	ResultCount     int      `json:"resultCount"`
	OverallProgress int      `json:"overallProgress"`
}

// ScoreResetPayload accompanies TypeScoreReset. An empty ParentIDs means the
// whole record was reset.
type ScoreResetPayload struct {
	Level     string   `json:"level"`
	ParentIDs []string `json:"parentIds,omitempty"`
}

// GameCompletedPayload accompanies TypeGameCompleted.
type GameCompletedPayload struct {
	GameID       string   `json:"gameId"`
	ExerciseType string   `json:"exerciseType"`
	Score        int      `json:"score"`
	CorrectPairs int      `json:"correctPairs"`
	ErrorWords   []string `json:"errorWords"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type, user and payload.
func NewEvent(eventType, userID string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
