package dto

// RelayReply is the orchestrator's outbound message: plain text plus the
// structured annotations the front end may render. It is an opaque payload
// from the orchestrator's point of view.
type RelayReply struct {
	Text        string `json:"text"`
	AIGenerated bool   `json:"ai_generated,omitempty"`
	Feedback    bool   `json:"feedback,omitempty"`
}

func TextReply(text string) *RelayReply {
	return &RelayReply{Text: text}
}

// FeedbackValue is the payload of a message/submitAction invoke.
type FeedbackValue struct {
	ActionName  string                 `json:"actionName"`
	ActionValue map[string]interface{} `json:"actionValue"`
}

// TurnEvent is published on the internal bus for every handled turn; the
// audit consumer persists it when a transcript store is configured.
type TurnEvent struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	Text           string `json:"text"`
	Route          string `json:"route"` // "backend" | "inference" | "auth"
}

const (
	RouteBackend   = "backend"
	RouteInference = "inference"
	RouteAuth      = "auth"
)
