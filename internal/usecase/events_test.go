package usecase

import (
	"errors"
	"sync"
	"testing"

	"FilingLens/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu  sync.Mutex
	got []models.DashboardEvent
}

func (q *recordingQueue) Enqueue(e models.DashboardEvent) {
	q.mu.Lock()
	q.got = append(q.got, e)
	q.mu.Unlock()
}

func (q *recordingQueue) events() []models.DashboardEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.DashboardEvent(nil), q.got...)
}

func TestEventSinkNilIsSafe(t *testing.T) {
	var s *EventSink
	assert.NotPanics(t, func() { s.Emit(models.EventBatchFailed, 1, errors.New("x"), nil) })
	assert.Empty(t, s.Session())
}

func TestEventSinkStampsAndFansOut(t *testing.T) {
	q := &recordingQueue{}
	s := NewEventSink("session-a", q)
	id, ch := s.Subscribe(1)

	s.Emit(models.EventBatchFailed, 7, errors.New("timeout"), map[string]interface{}{"kind": "batch"})
	// buffer is full; this one is dropped for the subscriber only
	s.Emit(models.EventSelectionChanged, 0, nil, nil)

	e := <-ch
	assert.Equal(t, models.EventBatchFailed, e.Type)
	assert.Equal(t, "session-a", e.Session)
	assert.Equal(t, uint64(7), e.Seq)
	assert.Equal(t, "timeout", e.Error)
	assert.False(t, e.Time.IsZero())

	require.Len(t, q.events(), 2)

	s.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}
