package contract

import (
	"context"

	"hr-relay-bot/internal/model"
)

type TranscriptRepository interface {
	Create(ctx context.Context, transcript *model.ChatTranscript) error
	FindByConversation(ctx context.Context, conversationID string, limit int) ([]*model.ChatTranscript, error)
}
