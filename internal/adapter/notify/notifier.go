package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// Email is a rendered message handed to the mail service.
type Email struct {
	Kind     string    `json:"kind"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	HTML     string    `json:"html"`
	OrderID  string    `json:"orderId,omitempty"`
	QueuedAt time.Time `json:"queuedAt"`
}

// Notifier delivers e-mails.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// KafkaNotifier publishes e-mails to the topic consumed by the mail service.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaNotifier builds KafkaNotifier on top of producer.
func NewKafkaNotifier(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

// Send publishes email keyed by recipient.
func (n *KafkaNotifier) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email.QueuedAt.IsZero() {
		email.QueuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(email.To),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(email.Kind)},
		},
	}

	partition, offset, err := n.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	n.logger.Debug("email published",
		slog.String("kind", email.Kind),
		slog.String("topic", n.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// LogNotifier only records e-mails in the log. Used when no brokers are configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the e-mail envelope.
func (n *LogNotifier) Send(_ context.Context, email Email) error {
	n.logger.Info("email not delivered, no transport configured",
		slog.String("kind", email.Kind),
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}
