package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// RequestEvent is published on every ledger transition so the worker can
// observe the workflow without being in the request path.
type RequestEvent struct {
	Type           string    `json:"type"`
	RequestID      int64     `json:"request_id"`
	IdentityID     int64     `json:"identity_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureDate  time.Time `json:"departure_date"`
	PassengerCount int       `json:"passenger_count"`
	TravelClass    string    `json:"travel_class"`
	PriceCents     int64     `json:"price_cents"`
	Outcome        string    `json:"outcome,omitempty"`
	OrderID        string    `json:"order_id,omitempty"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
