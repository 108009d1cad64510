package teams

import "encoding/json"

// Wire types for the Bot Framework activity protocol. Only the fields the
// relay touches are modeled; everything else passes through untouched.

type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ConversationAccount struct {
	ID      string `json:"id"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

type Activity struct {
	Type         string                   `json:"type" validate:"required"`
	ID           string                   `json:"id,omitempty"`
	Text         string                   `json:"text,omitempty"`
	From         *ChannelAccount          `json:"from,omitempty"`
	Recipient    *ChannelAccount          `json:"recipient,omitempty"`
	Conversation *ConversationAccount     `json:"conversation,omitempty" validate:"required"`
	ServiceURL   string                   `json:"serviceUrl,omitempty"`
	ChannelID    string                   `json:"channelId,omitempty"`
	ReplyToID    string                   `json:"replyToId,omitempty"`
	Name         string                   `json:"name,omitempty"` // invoke activity name
	Value        json.RawMessage          `json:"value,omitempty"`
	Entities     []map[string]interface{} `json:"entities,omitempty"`
	ChannelData  map[string]interface{}   `json:"channelData,omitempty"`
}

const (
	ActivityTypeMessage = "message"
	ActivityTypeInvoke  = "invoke"

	// Invoke name for the message-feedback affordance.
	InvokeSubmitAction = "message/submitAction"
)

// NewReply builds a message activity answering inbound, with sender and
// recipient swapped the way the connector expects.
func NewReply(inbound *Activity, text string) *Activity {
	reply := &Activity{
		Type:         ActivityTypeMessage,
		Text:         text,
		Conversation: inbound.Conversation,
		ReplyToID:    inbound.ID,
		ChannelID:    inbound.ChannelID,
		ServiceURL:   inbound.ServiceURL,
	}
	if inbound.Recipient != nil {
		reply.From = inbound.Recipient
	}
	if inbound.From != nil {
		reply.Recipient = inbound.From
	}
	return reply
}

// MarkAIGenerated attaches the "AI generated" entity marker.
func (a *Activity) MarkAIGenerated() *Activity {
	a.Entities = append(a.Entities, map[string]interface{}{
		"type":           "https://schema.org/Message",
		"@type":          "Message",
		"@context":       "https://schema.org",
		"additionalType": []string{"AIGeneratedContent"},
	})
	return a
}

// WithFeedback enables the thumbs-up/down feedback affordance on the card.
func (a *Activity) WithFeedback() *Activity {
	if a.ChannelData == nil {
		a.ChannelData = map[string]interface{}{}
	}
	a.ChannelData["feedbackLoopEnabled"] = true
	return a
}
