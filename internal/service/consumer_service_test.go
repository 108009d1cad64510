package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-relay-bot/internal/dto"
	"hr-relay-bot/internal/model"
)

type fakeTranscriptRepo struct {
	mu   sync.Mutex
	rows []*model.ChatTranscript
}

func (f *fakeTranscriptRepo) Create(_ context.Context, transcript *model.ChatTranscript) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, transcript)
	return nil
}

func (f *fakeTranscriptRepo) FindByConversation(_ context.Context, conversationID string, _ int) ([]*model.ChatTranscript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ChatTranscript
	for _, row := range f.rows {
		if row.ConversationId == conversationID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeTranscriptRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func newPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
}

func TestTurnEventsReachTranscriptStore(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	repo := &fakeTranscriptRepo{}
	consumer := NewConsumerService(pubSub, "TEST_TOPIC", repo, &recordingLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("TEST_TOPIC", pubSub)
	require.NoError(t, publisher.PublishTurn(ctx, &dto.TurnEvent{
		ConversationID: "conv-1",
		UserID:         "user-1",
		Role:           "user",
		Text:           "how many leave days?",
		Route:          dto.RouteBackend,
	}))

	require.Eventually(t, func() bool {
		return repo.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	rows, err := repo.FindByConversation(ctx, "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "how many leave days?", rows[0].Text)
	assert.Equal(t, dto.RouteBackend, rows[0].Route)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rows[0].Id.String())
}

func TestConsumerWithoutStoreOnlyLogs(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	log := &recordingLogger{}
	consumer := NewConsumerService(pubSub, "TEST_TOPIC", nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("TEST_TOPIC", pubSub)
	require.NoError(t, publisher.PublishTurn(ctx, &dto.TurnEvent{
		ConversationID: "conv-1",
		Role:           "user",
		Text:           "hello",
		Route:          dto.RouteInference,
	}))

	require.Eventually(t, func() bool {
		for _, e := range log.entries {
			if e.message == "turn handled" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerDropsMalformedPayload(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	repo := &fakeTranscriptRepo{}
	log := &recordingLogger{}
	consumer := NewConsumerService(pubSub, "TEST_TOPIC", repo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	raw := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	require.NoError(t, pubSub.Publish("TEST_TOPIC", raw))

	require.Eventually(t, func() bool {
		for _, e := range log.entries {
			if e.message == "dropping malformed turn event" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, repo.count())
}
