package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/embassy/internal/logging"
)

// EventEmitter delivers orchestrator events to one subscriber.
// A nil *EventEmitter discards everything.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
	log          *logging.Logger

	// mu guards closed; Emit holds it shared while sending.
	mu     sync.RWMutex
	closed bool
}

// NewEventEmitter creates an EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int, log *logging.Logger) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
		log:    logging.OrNop(log),
	}
}

// Emit sends an event. If the buffer is full it waits briefly, then drops the event.
// Events emitted after Close are discarded.
func (e *EventEmitter) Emit(event Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			e.log.Warn("event channel full, dropping event", "type", string(event.Type), "dropped", count)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel once in-flight sends finish.
// It is safe to call more than once.
func (e *EventEmitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.events)
}
