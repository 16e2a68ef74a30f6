package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appreq "github.com/opsboard/backend/internal/application/requisition"
	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
)

type stubFeed struct {
	mu      gosync.Mutex
	records []appreq.ExternalRequisition
	err     error
	calls   int
	block   chan struct{}
}

func (f *stubFeed) Name() string { return "stub" }

func (f *stubFeed) Fetch(ctx context.Context) ([]appreq.ExternalRequisition, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]appreq.ExternalRequisition, len(f.records))
	copy(out, f.records)
	return out, nil
}

type runLog struct {
	mu   gosync.Mutex
	runs []Run
}

func (r *runLog) Record(run Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
}

type actorMap map[string]identity.Actor

func (m actorMap) ResolveActor(_ context.Context, userID string) (identity.Actor, error) {
	if a, ok := m[userID]; ok {
		return a, nil
	}
	return identity.Actor{}, shared.ErrUnauthorized
}

func testStore(t *testing.T) *appreq.Store {
	t.Helper()
	graph, err := location.NewGraph([]location.Location{
		{ID: "loc-central", Name: "Central", Type: location.LocationTypeCentral},
		{ID: "loc-nampula", Name: "Nampula", Type: location.LocationTypeBranch, ParentID: "loc-central"},
		{ID: "loc-field-a", Name: "Field A", Type: location.LocationTypeField, ParentID: "loc-nampula"},
	}, "loc-central")
	require.NoError(t, err)
	cat, err := catalog.NewCatalog([]catalog.Item{{ID: "it-rope", Name: "Rope", SKU: "ROPE-10"}})
	require.NoError(t, err)
	machine := requisition.NewStateMachine(requisition.NewRoleGate(graph, nil))
	actors := actorMap{"u-field-a": {UserID: "u-field-a", Role: identity.RoleFieldWorker, LocationID: "loc-field-a"}}
	return appreq.NewStore(graph, cat, inventory.NewLedger(nil), machine, actors, nil)
}

func external(id string) appreq.ExternalRequisition {
	return appreq.ExternalRequisition{
		ID:               id,
		RequesterID:      "u-remote",
		TargetLocationID: "loc-field-a",
		ItemID:           "it-rope",
		Quantity:         3,
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestCoordinator_SyncIsNonDestructive(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	local, err := store.Create(ctx, appreq.CreateRequest{ItemID: "it-rope", Quantity: 1, RequesterID: "u-field-a"})
	require.NoError(t, err)

	feed := &stubFeed{records: []appreq.ExternalRequisition{external("ext-1"), external("ext-2")}}
	fixed := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	c := NewCoordinator(feed, store, WithClock(func() time.Time { return fixed }))

	first, err := c.Sync(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Inserted, 2)
	assert.Equal(t, 2, first.Fetched)
	assert.Equal(t, fixed, first.Timestamp)

	before := store.FindBy(nil)
	require.Len(t, before, 3)

	second, err := c.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.Inserted)
	assert.Equal(t, 2, second.Known)

	after := store.FindBy(nil)
	require.Len(t, after, 3)
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Status, after[i].Status)
	}
	assert.Equal(t, local.ID, after[2].ID)
}

func TestCoordinator_NewFeedRecordsAreAddedLater(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	feed := &stubFeed{records: []appreq.ExternalRequisition{external("ext-1")}}
	c := NewCoordinator(feed, store)

	_, err := c.Sync(ctx)
	require.NoError(t, err)

	feed.mu.Lock()
	feed.records = append(feed.records, external("ext-2"))
	feed.mu.Unlock()

	res, err := c.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, res.Inserted, 1)
	assert.Equal(t, "ext-2", res.Inserted[0].ID)
	assert.Equal(t, 2, store.Len())
}

func TestCoordinator_ManualTriggerSurfacesFailure(t *testing.T) {
	store := testStore(t)
	feed := &stubFeed{err: errors.New("connection refused")}
	runs := &runLog{}
	c := NewCoordinator(feed, store, WithRecorder(runs))

	_, err := c.Trigger(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrSyncFailure)
	assert.Equal(t, shared.CodeSyncFailure, shared.CodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	require.Len(t, runs.runs, 1)
	assert.Equal(t, TriggerManual, runs.runs[0].Trigger)
	assert.Equal(t, RunStatusFailed, runs.runs[0].Status)
}

func TestCoordinator_TickOnlyLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := testStore(t)
	feed := &stubFeed{err: errors.New("timeout")}
	runs := &runLog{}
	c := NewCoordinator(feed, store, WithRecorder(runs), WithLogger(zap.New(core)))

	c.Tick(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Scheduled sync failed, retrying next tick").Len())
	require.Len(t, runs.runs, 1)
	assert.Equal(t, TriggerAutomatic, runs.runs[0].Trigger)
	assert.Equal(t, 0, store.Len())

	feed.mu.Lock()
	feed.err = nil
	feed.records = []appreq.ExternalRequisition{external("ext-1")}
	feed.mu.Unlock()

	c.Tick(context.Background())
	assert.Equal(t, 1, store.Len())
	require.Len(t, runs.runs, 2)
	assert.Equal(t, RunStatusSuccess, runs.runs[1].Status)
	assert.Equal(t, 1, runs.runs[1].Inserted)
}

func TestCoordinator_TickSkipsWhileRunning(t *testing.T) {
	store := testStore(t)
	feed := &stubFeed{block: make(chan struct{})}
	runs := &runLog{}
	c := NewCoordinator(feed, store, WithRecorder(runs))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Trigger(context.Background())
	}()

	require.Eventually(t, func() bool {
		if c.mu.TryLock() {
			c.mu.Unlock()
			return false
		}
		return true
	}, time.Second, time.Millisecond)

	c.Tick(context.Background())
	close(feed.block)
	<-done

	runs.mu.Lock()
	defer runs.mu.Unlock()
	require.Len(t, runs.runs, 2)
	assert.Equal(t, RunStatusSkipped, runs.runs[0].Status)
	assert.Equal(t, RunStatusSuccess, runs.runs[1].Status)
}

type failingMerger struct{}

func (failingMerger) MergeExternal(context.Context, []appreq.ExternalRequisition) (*appreq.MergeResult, error) {
	return nil, errors.New("disk full")
}

func TestCoordinator_MergeFailureIsSyncFailure(t *testing.T) {
	c := NewCoordinator(&stubFeed{records: []appreq.ExternalRequisition{external("ext-1")}}, failingMerger{}, WithTimeout(time.Second))
	_, err := c.Sync(context.Background())
	assert.ErrorIs(t, err, shared.ErrSyncFailure)
	assert.Equal(t, "stub", c.FeedName())
}
