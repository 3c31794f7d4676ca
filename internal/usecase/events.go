package usecase

import (
	"sync"
	"time"

	"FilingLens/internal/domain/models"

	"github.com/google/uuid"
)

// EventQueue accepts events for asynchronous delivery. Enqueue must not block.
type EventQueue interface {
	Enqueue(e models.DashboardEvent)
}

// EventSink stamps dashboard events and fans them out to local subscribers
// and an optional delivery queue. All methods are safe on a nil *EventSink.
type EventSink struct {
	session string
	queue   EventQueue
	now     func() time.Time

	subsMu    sync.Mutex
	subs      map[int]chan models.DashboardEvent
	nextSubID int
}

func NewEventSink(session string, queue EventQueue) *EventSink {
	return &EventSink{
		session: session,
		queue:   queue,
		now:     time.Now,
		subs:    make(map[int]chan models.DashboardEvent),
	}
}

// Session returns the session id stamped on every event.
func (s *EventSink) Session() string {
	if s == nil {
		return ""
	}
	return s.session
}

// Emit records one event. err may be nil.
func (s *EventSink) Emit(t models.EventType, seq uint64, err error, attrs map[string]interface{}) {
	if s == nil {
		return
	}
	e := models.DashboardEvent{
		ID:      uuid.NewString(),
		Session: s.session,
		Type:    t,
		Time:    s.now().UTC(),
		Seq:     seq,
		Attrs:   attrs,
	}
	if err != nil {
		e.Error = err.Error()
	}
	if s.queue != nil {
		s.queue.Enqueue(e)
	}
	s.broadcast(e)
}

// Subscribe returns a channel of future events. Slow consumers drop events.
func (s *EventSink) Subscribe(bufSize int) (int, <-chan models.DashboardEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.DashboardEvent, bufSize)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *EventSink) Unsubscribe(id int) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *EventSink) broadcast(e models.DashboardEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
