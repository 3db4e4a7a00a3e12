package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/revdup-client/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var established, cleared int
	d.Subscribe(EventSessionEstablished, func(_ context.Context, ev Event) {
		established++
		assert.Equal(t, domain.RoleAdmin, ev.Role)
	})
	d.Subscribe(EventSessionCleared, func(_ context.Context, _ Event) {
		cleared++
	})

	d.Publish(context.Background(), Event{Type: EventSessionEstablished, Role: domain.RoleAdmin, Timestamp: time.Now()})
	d.Publish(context.Background(), Event{Type: EventSessionCleared, Timestamp: time.Now()})
	d.Publish(context.Background(), Event{Type: EventSessionCleared, Timestamp: time.Now()})

	assert.Equal(t, 1, established)
	assert.Equal(t, 2, cleared)
}

func TestDispatcherMultipleHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls int
	for i := 0; i < 3; i++ {
		d.Subscribe(EventSessionEstablished, func(_ context.Context, _ Event) { calls++ })
	}

	d.Publish(context.Background(), Event{Type: EventSessionEstablished})
	assert.Equal(t, 3, calls)
}
