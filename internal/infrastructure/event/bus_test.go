package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/infrastructure/cache"
)

type testHandler struct {
	types   []string
	mu      sync.Mutex
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *testHandler) EventTypes() []string { return h.types }

func (h *testHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, ev)
	return h.err
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func newReq(t *testing.T) *requisition.Requisition {
	t.Helper()
	r, err := requisition.New(requisition.NewParams{
		RequesterID:      "u-field-a",
		SourceLocationID: "loc-central",
		TargetLocationID: "loc-nampula",
		ItemID:           "it-chainsaw",
		Quantity:         3,
	}, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return r
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	created := &testHandler{types: []string{requisition.EventTypeCreated}}
	changed := &testHandler{types: []string{requisition.EventTypeStatusChanged}}
	all := &testHandler{}
	bus.Subscribe(created)
	bus.Subscribe(changed)
	bus.Subscribe(all)

	r := newReq(t)
	require.NoError(t, bus.Publish(context.Background(), requisition.NewCreatedEvent(r)))

	assert.Equal(t, 1, created.count())
	assert.Equal(t, 0, changed.count())
	assert.Equal(t, 1, all.count())
	published, failures := bus.Stats()
	assert.Equal(t, int64(1), published)
	assert.Zero(t, failures)
}

func TestInMemoryEventBus_FailingHandlersDoNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &testHandler{err: errors.New("nope")}
	panicking := &testHandler{panics: true}
	ok := &testHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	err := bus.Publish(context.Background(), requisition.NewCreatedEvent(newReq(t)))
	require.NoError(t, err)
	assert.Equal(t, 1, ok.count())
	_, failures := bus.Stats()
	assert.Equal(t, int64(2), failures)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{types: []string{requisition.EventTypeCreated}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), requisition.NewCreatedEvent(newReq(t))))
	assert.Zero(t, h.count())
	assert.Zero(t, bus.registry.Len())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.Running())
}

func TestIdempotentHandler(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(0)
	defer store.Close()

	inner := &testHandler{}
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), nil)
	ev := requisition.NewCreatedEvent(newReq(t))
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, ev))
	assert.Equal(t, 1, inner.count())
	assert.Equal(t, DedupStats{Processed: 1, Duplicates: 1}, h.Stats())

	t.Run("disabled passes everything", func(t *testing.T) {
		inner := &testHandler{}
		h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{}, nil)
		require.NoError(t, h.Handle(ctx, ev))
		require.NoError(t, h.Handle(ctx, ev))
		assert.Equal(t, 2, inner.count())
	})
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewLogHandler(zap.New(core))

	r := newReq(t)
	ev := requisition.NewStatusChangedEvent(r, requisition.StatusPending, "u-mgr")
	require.NoError(t, h.Handle(context.Background(), ev))

	entries := logs.FilterMessage("Requisition event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, r.ID, fields["requisition_id"])
	assert.Equal(t, "u-mgr", fields["actor_id"])
	assert.Equal(t, requisition.EventTypeStatusChanged, fields["event_type"])
}

type fakePublisher struct {
	channel string
	message interface{}
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.message = message
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisForwarder(t *testing.T) {
	pub := &fakePublisher{}
	f := NewRedisForwarder(pub, "opsboard:events")
	r := newReq(t)
	ev := requisition.NewCreatedEvent(r)

	require.NoError(t, f.Handle(context.Background(), ev))
	assert.Equal(t, "opsboard:events", pub.channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.message.([]byte), &env))
	assert.Equal(t, requisition.EventTypeCreated, env.Type)
	assert.Equal(t, r.ID, env.AggregateID)
	assert.Contains(t, string(env.Payload), `"item_id":"it-chainsaw"`)

	pub.err = errors.New("connection reset")
	err := f.Handle(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opsboard:events")
}
