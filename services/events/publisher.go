package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types published by the schedule service.
const (
	TypeScheduleUpdated = "schedule.updated"
	TypeBookingAccepted = "booking.accepted"
	TypeBookingReleased = "booking.released"
)

// Event is the envelope written to Kafka. The provider id is the message key
// so every event of one provider lands on the same partition.
type Event struct {
	ID         string      `json:"eventId"`
	Type       string      `json:"eventType"`
	ProviderID string      `json:"providerId"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// NewEvent stamps a fresh event id and time.
func NewEvent(eventType, providerID string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProviderID: providerID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

func newKafkaPublisher(w messageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.ProviderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	p.logger.Debug("Published event", zap.String("eventType", ev.Type), zap.String("providerID", ev.ProviderID))
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                        { return nil }

// NewPublisher returns a Kafka publisher for the comma-separated broker list,
// or a NoopPublisher when no broker is configured.
func NewPublisher(brokers, topic string, logger *zap.Logger) Publisher {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		logger.Warn("Kafka event publisher disabled (no brokers configured)")
		return NoopPublisher{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(list...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(writer, logger)
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
