// Package events is a typed in-process publish/subscribe bus for domain changes.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"academy/internal/queue"
)

// Topic names a kind of change.
type Topic string

const (
	StudentAdded      Topic = "student.added"
	StudentUpdated    Topic = "student.updated"
	StudentDeleted    Topic = "student.deleted"
	CourseChanged     Topic = "course.changed"
	InstructorChanged Topic = "instructor.changed"
	AttendanceUpdated Topic = "attendance.updated"
	DataImported      Topic = "data.imported"
)

// Event describes one change. EntityID is zero for bulk changes.
type Event struct {
	Topic    Topic     `json:"topic"`
	EntityID int64     `json:"entityId,omitempty"`
	Date     string    `json:"date,omitempty"`
	At       time.Time `json:"at"`
}

// Handler reacts to an event. Handlers run synchronously on the publisher's goroutine.
type Handler func(ctx context.Context, e Event)

// Publisher is what workflows depend on.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus delivers events to subscribers of their topic and to catch-all subscribers.
type Bus struct {
	mu     sync.RWMutex
	topics map[Topic][]Handler
	all    []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[Topic][]Handler)}
}

// Subscribe registers h for the given topics, or for every topic when none are given.
func (b *Bus) Subscribe(h Handler, topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(topics) == 0 {
		b.all = append(b.all, h)
		return
	}
	for _, t := range topics {
		b.topics[t] = append(b.topics[t], h)
	}
}

// Publish stamps e and hands it to every matching handler in registration order.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.topics[e.Topic])+len(b.all))
	hs = append(hs, b.topics[e.Topic]...)
	hs = append(hs, b.all...)
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, e)
	}
}

// Discard is a Publisher that drops everything.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(context.Context, Event) {}

// Forward returns a handler that relays events onto q for the worker.
func Forward(q queue.Queue, log zerolog.Logger) Handler {
	return func(ctx context.Context, e Event) {
		msg, err := queue.NewMessage(string(e.Topic), e)
		if err != nil {
			log.Error().Err(err).Str("topic", string(e.Topic)).Msg("encode event")
			return
		}
		if err := q.Publish(ctx, msg); err != nil {
			log.Warn().Err(err).Str("topic", string(e.Topic)).Msg("queue publish failed")
		}
	}
}
