package events

import "time"

// Event defines the contract for all ops events the relay emits.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_AUTHENTICATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUserAuthenticated   = "USER_AUTHENTICATED"
	TypeTokenRegisterFailed = "TOKEN_REGISTER_FAILED"
	TypeBackendUnavailable  = "BACKEND_UNAVAILABLE"
)

// NewUserAuthenticated records a completed authentication flow.
func NewUserAuthenticated(userID, conversationID string) Event {
	return BaseEvent{
		Type: TypeUserAuthenticated,
		Data: map[string]interface{}{
			"user_id":         userID,
			"conversation_id": conversationID,
		},
		OccurredAt: time.Now(),
	}
}

// NewTokenRegisterFailed records a registration failure; the auth flow
// continues regardless, this is for operators.
func NewTokenRegisterFailed(userID, reason string) Event {
	return BaseEvent{
		Type: TypeTokenRegisterFailed,
		Data: map[string]interface{}{
			"user_id": userID,
			"reason":  reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewBackendUnavailable records a failed backend query, classified so
// timeouts are distinguishable from HTTP errors.
func NewBackendUnavailable(classification string, status int) Event {
	return BaseEvent{
		Type: TypeBackendUnavailable,
		Data: map[string]interface{}{
			"classification": classification,
			"status":         status,
		},
		OccurredAt: time.Now(),
	}
}
