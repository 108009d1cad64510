package service

import (
	"context"
	"encoding/json"
	"fmt"

	"hr-relay-bot/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishTurn(ctx context.Context, event *dto.TurnEvent) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishTurn(_ context.Context, event *dto.TurnEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal turn event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("publish turn event: %w", err)
	}
	return nil
}
