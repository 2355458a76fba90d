package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"booking-service/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, e service.EmailEvent) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

var errInvalidEvent = errors.New("event has no recipient or template")

type KafkaEmailConsumer struct {
	reader messageReader
	sender Sender
	log    *zap.Logger
}

func NewKafkaEmailConsumer(brokers []string, groupID, topic string, sender Sender, log *zap.Logger) *KafkaEmailConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaEmailConsumer{reader: r, sender: sender, log: log}
}

// Run consumes until ctx is cancelled. Undeliverable messages are logged and skipped.
func (c *KafkaEmailConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		if err := c.handle(ctx, m); err != nil {
			c.log.Error("handle message", zap.ByteString("key", m.Key), zap.Error(err))
		}
	}
}

func (c *KafkaEmailConsumer) handle(ctx context.Context, m kafka.Message) error {
	var e service.EmailEvent
	if err := json.Unmarshal(m.Value, &e); err != nil {
		return err
	}
	if e.To == "" || e.Template == "" {
		return errInvalidEvent
	}
	if err := c.sender.Send(ctx, e); err != nil {
		return err
	}
	c.log.Info("email sent", zap.String("type", e.Type), zap.String("to", e.To), zap.String("template", e.Template))
	return nil
}

func (c *KafkaEmailConsumer) Close() error { return c.reader.Close() }
