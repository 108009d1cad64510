package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatTranscript is one audited turn. The transcript store is an operator
// feature, separate from the in-memory session state the bot answers from.
type ChatTranscript struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationId string    `gorm:"type:varchar(255);not null;index" json:"conversation_id"`
	UserId         string    `gorm:"type:varchar(255);index" json:"user_id"`
	Role           string    `gorm:"type:varchar(50);not null" json:"role"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Route          string    `gorm:"type:varchar(20);not null" json:"route"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ChatTranscript) TableName() string {
	return "chat_transcripts"
}
