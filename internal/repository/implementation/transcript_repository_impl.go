package implementation

import (
	"context"

	"hr-relay-bot/internal/model"
	"hr-relay-bot/internal/repository/contract"

	"gorm.io/gorm"
)

type TranscriptRepositoryImpl struct {
	db *gorm.DB
}

func NewTranscriptRepository(db *gorm.DB) contract.TranscriptRepository {
	return &TranscriptRepositoryImpl{db: db}
}

func (r *TranscriptRepositoryImpl) Create(ctx context.Context, transcript *model.ChatTranscript) error {
	return r.db.WithContext(ctx).Create(transcript).Error
}

func (r *TranscriptRepositoryImpl) FindByConversation(ctx context.Context, conversationID string, limit int) ([]*model.ChatTranscript, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []*model.ChatTranscript
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
