package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-relay-bot/pkg/store"
)

func TestGetOrCreateUnknownIDStartsEmpty(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	session, err := repo.GetOrCreate(context.Background(), "conv-new")
	require.NoError(t, err)

	history, err := session.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, "conv-new", session.ID())
}

func TestGetOrCreateReturnsSameStorage(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "conv-1")
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, store.RoleUser, "hello"))

	second, err := repo.GetOrCreate(ctx, "conv-1")
	require.NoError(t, err)

	history, err := second.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Text)

	// Writes through either handle land in the same conversation.
	require.NoError(t, second.Append(ctx, store.RoleAssistant, "hi"))
	history, err = first.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSessionsAreIsolatedByConversation(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	a, err := repo.GetOrCreate(ctx, "conv-a")
	require.NoError(t, err)
	b, err := repo.GetOrCreate(ctx, "conv-b")
	require.NoError(t, err)

	require.NoError(t, a.Append(ctx, store.RoleUser, "only in a"))

	historyB, err := b.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, historyB)
}

func TestDeleteDropsHistory(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	session, err := repo.GetOrCreate(ctx, "conv-1")
	require.NoError(t, err)
	require.NoError(t, session.Append(ctx, store.RoleUser, "hello"))

	require.NoError(t, repo.Delete(ctx, "conv-1"))

	fresh, err := repo.GetOrCreate(ctx, "conv-1")
	require.NoError(t, err)
	history, err := fresh.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConcurrentAppendsAllLand(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	const goroutines = 10
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				session, err := repo.GetOrCreate(ctx, "conv-shared")
				if err != nil {
					t.Error(err)
					return
				}
				if err := session.Append(ctx, store.RoleUser, fmt.Sprintf("g%d-%d", g, i)); err != nil {
					t.Error(err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	session, err := repo.GetOrCreate(ctx, "conv-shared")
	require.NoError(t, err)
	history, err := session.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, goroutines*perGoroutine)
}

func TestHistoryIsASnapshot(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	session, err := repo.GetOrCreate(ctx, "conv-1")
	require.NoError(t, err)
	require.NoError(t, session.Append(ctx, store.RoleUser, "first"))

	snapshot, err := session.History(ctx)
	require.NoError(t, err)

	require.NoError(t, session.Append(ctx, store.RoleAssistant, "second"))
	assert.Len(t, snapshot, 1, "earlier snapshot must not grow")
}
