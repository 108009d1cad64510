package memory

import (
	"context"
	"time"

	"hr-relay-bot/internal/repository/contract"
	"hr-relay-bot/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps conversation histories in process memory with a
// TTL bound, so idle conversations get evicted instead of growing the map
// for the process lifetime.
type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	// Purge expired sessions every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) GetOrCreate(_ context.Context, conversationID string) (contract.SessionHandle, error) {
	if x, found := r.cache.Get(conversationID); found {
		return &memoryHandle{conv: x.(*store.Conversation)}, nil
	}

	conv := store.NewConversation(conversationID)
	if err := r.cache.Add(conversationID, conv, cache.DefaultExpiration); err != nil {
		// Lost a creation race; the stored one wins.
		if x, found := r.cache.Get(conversationID); found {
			conv = x.(*store.Conversation)
		}
	}
	return &memoryHandle{conv: conv}, nil
}

func (r *SessionRepository) Delete(_ context.Context, conversationID string) error {
	r.cache.Delete(conversationID)
	return nil
}

type memoryHandle struct {
	conv *store.Conversation
}

func (h *memoryHandle) ID() string {
	return h.conv.ID
}

func (h *memoryHandle) Append(_ context.Context, role, text string) error {
	h.conv.Append(role, text)
	return nil
}

func (h *memoryHandle) History(_ context.Context) ([]store.Turn, error) {
	return h.conv.History(), nil
}
