package service

import (
	"context"
	"encoding/json"

	"insightrag-be/internal/pkg/logger"
	"insightrag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventSink receives events after they leave the in-process bus. The NATS publisher
// satisfies it.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sink       EventSink
	logger     logger.ILogger
}

// NewConsumerService logs every session event and forwards it to sink when one is set.
func NewConsumerService(subscriber message.Subscriber, topicName string, sink EventSink, logger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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
	var evt events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // malformed payloads would fail forever
		return
	}

	cs.logger.Info("EVENTS", evt.Type, evt.Data)

	if cs.sink != nil {
		if err := cs.sink.Publish(ctx, evt); err != nil {
			// forwarding is best effort; the event is already logged
			cs.logger.Warn("EVENTS", "Failed to forward event", map[string]interface{}{
				"type":  evt.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
