package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/thrivenig/travelbook/pkg/logger"
)

// Consumer reads the request-event stream and hands decoded events to a
// handler. Messages that do not decode as a RequestEvent are logged and
// skipped rather than stalling the group.
type Consumer struct {
	reader *kafka.Reader
	log    logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, RequestEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeRequestEvent(msg.Value)
		if err != nil {
			c.log.Warn("skipping undecodable event", "partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeRequestEvent(value []byte) (RequestEvent, error) {
	var event RequestEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return RequestEvent{}, err
	}
	return event, nil
}
