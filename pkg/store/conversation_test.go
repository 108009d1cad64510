package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPreservesOrder(t *testing.T) {
	conv := NewConversation("conv-1")
	conv.Append(RoleUser, "question")
	conv.Append(RoleAssistant, "answer")

	history := conv.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "question", history[0].Text)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Equal(t, 2, conv.Len())
}

func TestConcurrentAppends(t *testing.T) {
	conv := NewConversation("conv-1")

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				conv.Append(RoleUser, fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, conv.Len())
}

func TestHistorySnapshotDoesNotAlias(t *testing.T) {
	conv := NewConversation("conv-1")
	conv.Append(RoleUser, "original")

	snapshot := conv.History()
	snapshot[0].Text = "mutated"

	assert.Equal(t, "original", conv.History()[0].Text)
}
