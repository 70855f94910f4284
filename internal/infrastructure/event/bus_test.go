package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		created := &testHandler{eventTypes: []string{"Created"}}
		deleted := &testHandler{eventTypes: []string{"Deleted"}}
		bus.Subscribe(created)
		bus.Subscribe(deleted)

		require.NoError(t, bus.Publish(ctx, newTestEvent("Created"), newTestEvent("Created")))
		assert.Equal(t, 2, created.count())
		assert.Equal(t, 0, deleted.count())
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &testHandler{eventTypes: []string{"Created"}}
		bus.Subscribe(h, "Deleted")

		require.NoError(t, bus.Publish(ctx, newTestEvent("Created"), newTestEvent("Deleted")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &testHandler{}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 2, h.count())
	})

	t.Run("failing and panicking handlers do not stop delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &testHandler{eventTypes: []string{"E"}, err: errors.New("fail")}
		panicking := &testHandler{eventTypes: []string{"E"}, panics: true}
		ok := &testHandler{eventTypes: []string{"E"}}
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(ok)

		assert.NoError(t, bus.Publish(ctx, newTestEvent("E")))
		assert.Equal(t, 1, failing.count())
		assert.Equal(t, 1, panicking.count())
		assert.Equal(t, 1, ok.count())
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &testHandler{eventTypes: []string{"E"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("E")))
		assert.Equal(t, 0, h.count())
	})
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.False(t, bus.IsRunning())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}

func TestHandlerRegistry_GetHandlers(t *testing.T) {
	r := NewHandlerRegistry()
	specific := &testHandler{}
	wildcard := &testHandler{}
	r.Register(specific, "A", "B")
	r.Register(wildcard)

	assert.Equal(t, []shared.EventHandler{specific, wildcard}, r.GetHandlers("A"))
	assert.Equal(t, []shared.EventHandler{wildcard}, r.GetHandlers("C"))

	r.Unregister(specific)
	assert.Equal(t, []shared.EventHandler{wildcard}, r.GetHandlers("B"))
}
