package repository

import (
	"context"
	"time"

	"FilingLens/internal/domain/models"
)

// EventPublisher ships dashboard events out of process.
type EventPublisher interface {
	Publish(ctx context.Context, e models.DashboardEvent) error
	Close() error
}

// Metrics records orchestration-level measurements.
type Metrics interface {
	RecordEngineCall(op string, d time.Duration, err error)
	RecordCommit(kind, outcome string)
	SetLoading(loading bool)
	RecordCacheLookup(op string, hit bool)
	RecordEventDelivery(result string)
}
