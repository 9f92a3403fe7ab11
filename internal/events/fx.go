package events

import (
	"context"

	"github.com/smallbiznis/zoonova/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return NoopPublisher{}
	}
	log = log.Named("events")
	publisher := NewKafkaPublisher(NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := publisher.Close(); err != nil {
				log.Warn("close kafka writer", zap.Error(err))
			}
			return nil
		},
	})
	log.Info("kafka publisher enabled",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
	)
	return publisher
}
