package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/config"
)

// Module provides the e-mail notifier. Kafka is used when brokers are configured.
var Module = fx.Provide(newNotifier)

// newSyncProducer is replaced in tests.
var newSyncProducer = func(brokers []string, cfg *sarama.Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, cfg)
}

type notifierParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Warn("kafka brokers not configured, e-mails will only be logged")
		return NewLogNotifier(p.Logger), nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := newSyncProducer(p.Config.KafkaBrokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return producer.Close()
		},
	})

	p.Logger.Info("kafka producer initialized", slog.Any("brokers", p.Config.KafkaBrokers))
	return NewKafkaNotifier(producer, p.Config.NotifyTopic, p.Logger), nil
}
