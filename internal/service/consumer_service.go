package service

import (
	"context"
	"encoding/json"

	"hr-relay-bot/internal/dto"
	"hr-relay-bot/internal/model"
	"hr-relay-bot/internal/pkg/logger"
	"hr-relay-bot/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const moduleConsumer = "TurnConsumer"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn events off the internal bus and persists them
// as transcript rows. Without a configured transcript store it degrades to a
// log sink, so publishing is always safe.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	transcriptRepo contract.TranscriptRepository // nil when no DB is configured
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	transcriptRepo contract.TranscriptRepository,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		transcriptRepo: transcriptRepo,
		logger:         sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var event dto.TurnEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Warn(moduleConsumer, "dropping malformed turn event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if cs.transcriptRepo == nil {
		cs.logger.Info(moduleConsumer, "turn handled", map[string]interface{}{
			"conversation_id": event.ConversationID,
			"route":           event.Route,
			"role":            event.Role,
		})
		return
	}

	transcript := &model.ChatTranscript{
		Id:             uuid.New(),
		ConversationId: event.ConversationID,
		UserId:         event.UserID,
		Role:           event.Role,
		Text:           event.Text,
		Route:          event.Route,
	}
	if err := cs.transcriptRepo.Create(ctx, transcript); err != nil {
		cs.logger.Error(moduleConsumer, "failed to persist transcript row", map[string]interface{}{
			"error":           err.Error(),
			"conversation_id": event.ConversationID,
		})
	}
}
