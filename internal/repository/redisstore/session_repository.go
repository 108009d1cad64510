package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hr-relay-bot/internal/repository/contract"
	"hr-relay-bot/pkg/store"

	"github.com/redis/go-redis/v9"
)

// SessionRepository keeps conversation histories in Redis so multiple bot
// replicas share one view of a conversation. Each history is a Redis list of
// JSON-encoded turns with a sliding TTL.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(conversationID string) string {
	return "relay:session:" + conversationID
}

func (r *SessionRepository) GetOrCreate(ctx context.Context, conversationID string) (contract.SessionHandle, error) {
	// The list is created lazily on first append; the handle alone is enough.
	return &redisHandle{repo: r, id: conversationID}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, conversationID string) error {
	return r.rdb.Del(ctx, sessionKey(conversationID)).Err()
}

type redisHandle struct {
	repo *SessionRepository
	id   string
}

func (h *redisHandle) ID() string {
	return h.id
}

func (h *redisHandle) Append(ctx context.Context, role, text string) error {
	data, err := json.Marshal(store.Turn{Role: role, Text: text})
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := sessionKey(h.id)
	pipe := h.repo.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, h.repo.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (h *redisHandle) History(ctx context.Context) ([]store.Turn, error) {
	raw, err := h.repo.rdb.LRange(ctx, sessionKey(h.id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	turns := make([]store.Turn, 0, len(raw))
	for _, item := range raw {
		var turn store.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
