package repository

import (
	"context"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/domain/repository"
	pkgkafka "FilingLens/pkg/kafka"
	"FilingLens/pkg/logger"
)

// messageProducer is the part of *pkgkafka.Producer the publisher uses.
type messageProducer interface {
	Publish(ctx context.Context, topic string, msg pkgkafka.Message) error
	Close() error
}

// KafkaEventPublisher writes dashboard events to a topic, keyed by session
// so one session's events stay ordered on one partition.
type KafkaEventPublisher struct {
	producer messageProducer
	topic    string
}

func NewKafkaEventPublisher(producer messageProducer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, e models.DashboardEvent) error {
	return p.producer.Publish(ctx, p.topic, pkgkafka.Message{
		Key:   []byte(e.Session),
		Value: e,
		Headers: map[string]string{
			"event_type": string(e.Type),
			"event_id":   e.ID,
		},
	})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEventPublisher logs events at debug level. Used when no brokers are configured.
type NoopEventPublisher struct {
	log *logger.Logger
}

func NewNoopEventPublisher(l *logger.Logger) repository.EventPublisher {
	return &NoopEventPublisher{log: l.Component("events")}
}

func (p *NoopEventPublisher) Publish(_ context.Context, e models.DashboardEvent) error {
	p.log.Debug("dashboard event",
		logger.String("type", string(e.Type)),
		logger.Uint64("seq", e.Seq),
		logger.String("error", e.Error),
	)
	return nil
}

func (p *NoopEventPublisher) Close() error { return nil }
