package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	bus := New()
	id1, ch1 := bus.Subscribe(4)
	id2, ch2 := bus.Subscribe(4)
	defer bus.Unsubscribe(id2)

	bus.PublishNew(EventTypeTaskOverdue, "1.2.1", map[string]string{"project_id": "p1"})

	for _, ch := range []<-chan *Event{ch1, ch2} {
		ev := <-ch
		require.NotNil(t, ev)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, EventTypeTaskOverdue, ev.Type)
		assert.Equal(t, "1.2.1", ev.ResourceID)
		assert.Equal(t, "p1", ev.Metadata["project_id"])
		assert.False(t, ev.CreatedAt.IsZero())
	}

	bus.Unsubscribe(id1)
	_, ok := <-ch1
	assert.False(t, ok)
	bus.Unsubscribe(id1)
}

func TestBus_DropsWhenBufferFull(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(1)
	defer bus.Unsubscribe(id)

	bus.PublishNew(EventTypeProjectUpdated, "p1", nil)
	bus.PublishNew(EventTypeProjectUpdated, "p2", nil)

	ev := <-ch
	assert.Equal(t, "p1", ev.ResourceID)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}
