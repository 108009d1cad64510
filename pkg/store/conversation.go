package store

import "sync"

// Turn is a single exchange within a conversation. Insertion order is
// chronological and is what gets replayed as model context.
type Turn struct {
	Role string `json:"role"` // "user" | "assistant" | "system"
	Text string `json:"text"`
}

// Conversation is the in-memory session state for one chat thread. The
// mutex serializes history appends so concurrent deliveries in the same
// conversation cannot interleave.
type Conversation struct {
	ID string `json:"id"`

	mu    sync.Mutex
	turns []Turn
}

func NewConversation(id string) *Conversation {
	return &Conversation{ID: id}
}

func (c *Conversation) Append(role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Role: role, Text: text})
}

// History returns a snapshot of the turns so far. The copy keeps callers
// from racing the next append.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)
