package contract

import (
	"context"

	"hr-relay-bot/pkg/store"
)

// SessionHandle is a borrowed reference to one conversation's history. The
// orchestrator takes a handle per request and never holds it across requests.
type SessionHandle interface {
	ID() string
	Append(ctx context.Context, role, text string) error
	History(ctx context.Context) ([]store.Turn, error)
}

// SessionRepository maps a conversation id to its session. GetOrCreate must
// hand back the same underlying storage for the same id.
type SessionRepository interface {
	GetOrCreate(ctx context.Context, conversationID string) (SessionHandle, error)
	Delete(ctx context.Context, conversationID string) error
}
