package middleware

import (
	"context"
	"sync"
	"time"

	"FilingLens/internal/domain/models"
	domrepo "FilingLens/internal/domain/repository"
	"FilingLens/pkg/logger"
)

const (
	minBackoff = 50 * time.Millisecond
	maxBackoff = 2 * time.Second
)

// EventPipeline sits between the dashboard and the event publisher.
// Enqueue never blocks the caller; events are buffered and delivered by a
// single worker, retried with backoff while the publisher fails, and dropped
// when the buffer is full.
type EventPipeline struct {
	pub     domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *logger.Logger

	bufSize int
	timeout time.Duration
	accept  func(models.EventType) bool

	bufCh   chan models.DashboardEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PipelineOption func(*EventPipeline)

// WithBufferSize sets how many events may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithPublishTimeout bounds each publish attempt.
func WithPublishTimeout(d time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithEventTypes restricts delivery to the given types.
func WithEventTypes(types ...models.EventType) PipelineOption {
	return func(p *EventPipeline) {
		if len(types) == 0 {
			return
		}
		set := make(map[models.EventType]struct{}, len(types))
		for _, t := range types {
			set[t] = struct{}{}
		}
		p.accept = func(t models.EventType) bool {
			_, ok := set[t]
			return ok
		}
	}
}

func NewEventPipeline(pub domrepo.EventPublisher, metrics domrepo.Metrics, l *logger.Logger, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		pub:     pub,
		metrics: metrics,
		log:     l.Component("event_pipeline"),
		bufSize: 1000,
		timeout: 5 * time.Second,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.DashboardEvent, p.bufSize)
	return p
}

// Enqueue buffers e for delivery, dropping it if the buffer is full.
func (p *EventPipeline) Enqueue(e models.DashboardEvent) {
	if p.accept != nil && !p.accept(e.Type) {
		return
	}
	select {
	case p.bufCh <- e:
		p.record("buffered")
	default:
		p.record("dropped")
		p.log.Debug("event buffer full, dropping", logger.String("type", string(e.Type)))
	}
}

// Pending returns the number of buffered events.
func (p *EventPipeline) Pending() int {
	return len(p.bufCh)
}

// Start launches the delivery worker. Cancelling ctx ends the worker the
// same way Stop does: buffered events get one last delivery attempt.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run(ctx)
}

func (p *EventPipeline) run(ctx context.Context) {
	defer close(p.doneCh)

	backoff := minBackoff
	for {
		// shutdown wins over pending events
		select {
		case <-p.stopCh:
			p.drain()
			return
		case <-ctx.Done():
			p.drain()
			return
		default:
		}

		select {
		case <-p.stopCh:
			p.drain()
			return
		case <-ctx.Done():
			p.drain()
			return
		case e := <-p.bufCh:
			if err := p.publish(ctx, e); err != nil {
				p.record("retried")
				p.log.Debug("event publish failed", logger.String("type", string(e.Type)), logger.Error(err))
				if backoff < maxBackoff {
					backoff *= 2
				}
				select {
				case <-time.After(backoff):
				case <-p.stopCh:
				case <-ctx.Done():
				}
				// requeue if space; drop otherwise
				select {
				case p.bufCh <- e:
				default:
					p.record("dropped")
				}
				continue
			}
			backoff = minBackoff
		}
	}
}

// drain makes one delivery attempt for every buffered event. Each attempt
// gets its own deadline; the worker's context may already be cancelled.
func (p *EventPipeline) drain() {
	for {
		select {
		case e := <-p.bufCh:
			if err := p.publish(context.Background(), e); err != nil {
				p.record("dropped")
				p.log.Debug("event dropped on shutdown", logger.String("type", string(e.Type)), logger.Error(err))
			}
		default:
			return
		}
	}
}

func (p *EventPipeline) publish(ctx context.Context, e models.DashboardEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pub.Publish(ctx, e); err != nil {
		return err
	}
	p.record("published")
	return nil
}

func (p *EventPipeline) record(result string) {
	if p.metrics != nil {
		p.metrics.RecordEventDelivery(result)
	}
}

// Stop flushes what is buffered and stops the worker.
func (p *EventPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.stopCh)
	<-p.doneCh
}
