package repository

import (
	"context"
	"testing"

	"FilingLens/internal/domain/models"
	pkgkafka "FilingLens/pkg/kafka"
	"FilingLens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingProducer struct {
	topic  string
	msgs   []pkgkafka.Message
	closed bool
}

func (c *capturingProducer) Publish(_ context.Context, topic string, msg pkgkafka.Message) error {
	c.topic = topic
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *capturingProducer) Close() error {
	c.closed = true
	return nil
}

func TestKafkaEventPublisherKeysBySession(t *testing.T) {
	prod := &capturingProducer{}
	pub := NewKafkaEventPublisher(prod, "filinglens.dashboard.events")

	e := models.DashboardEvent{ID: "evt-1", Session: "sess-9", Type: models.EventBatchCommitted, Seq: 3}
	require.NoError(t, pub.Publish(context.Background(), e))

	assert.Equal(t, "filinglens.dashboard.events", prod.topic)
	require.Len(t, prod.msgs, 1)
	m := prod.msgs[0]
	assert.Equal(t, "sess-9", string(m.Key))
	assert.Equal(t, e, m.Value)
	assert.Equal(t, "batch_committed", m.Headers["event_type"])
	assert.Equal(t, "evt-1", m.Headers["event_id"])

	require.NoError(t, pub.Close())
	assert.True(t, prod.closed)
}

func TestNoopEventPublisher(t *testing.T) {
	pub := NewNoopEventPublisher(logger.Nop())
	assert.NoError(t, pub.Publish(context.Background(), models.DashboardEvent{Type: models.EventSelectionChanged}))
	assert.NoError(t, pub.Close())
}
