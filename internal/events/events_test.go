package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/queue"
)

func TestBusRoutesByTopic(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()

	var attendance, everything []Topic
	bus.Subscribe(func(_ context.Context, e Event) { attendance = append(attendance, e.Topic) }, AttendanceUpdated, DataImported)
	bus.Subscribe(func(_ context.Context, e Event) { everything = append(everything, e.Topic) })

	bus.Publish(ctx, Event{Topic: StudentAdded, EntityID: 6})
	bus.Publish(ctx, Event{Topic: AttendanceUpdated, EntityID: 1, Date: "2024-03-01"})
	bus.Publish(ctx, Event{Topic: DataImported})

	assert.Equal(t, []Topic{AttendanceUpdated, DataImported}, attendance)
	assert.Equal(t, []Topic{StudentAdded, AttendanceUpdated, DataImported}, everything)
}

func TestPublishStampsTime(t *testing.T) {
	bus := NewBus()
	var got Event
	bus.Subscribe(func(_ context.Context, e Event) { got = e })
	bus.Publish(context.Background(), Event{Topic: CourseChanged})
	assert.False(t, got.At.IsZero())

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bus.Publish(context.Background(), Event{Topic: CourseChanged, At: at})
	assert.Equal(t, at, got.At)
}

func TestForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := queue.NewInMemory(1)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	bus := NewBus()
	bus.Subscribe(Forward(q, zerolog.Nop()), StudentDeleted)
	bus.Publish(ctx, Event{Topic: StudentDeleted, EntityID: 3})

	select {
	case msg := <-msgs:
		assert.Equal(t, string(StudentDeleted), msg.Topic)
		var e Event
		require.NoError(t, json.Unmarshal(msg.Body, &e))
		assert.Equal(t, int64(3), e.EntityID)
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded")
	}
}
