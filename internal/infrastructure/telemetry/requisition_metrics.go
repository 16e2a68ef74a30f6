package telemetry

import (
	"context"
	"fmt"

	appreq "github.com/opsboard/backend/internal/application/requisition"
	appsync "github.com/opsboard/backend/internal/application/sync"
	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StatusCounter reports how many requisitions sit in each status
type StatusCounter interface {
	CountByStatus() map[requisition.Status]int
}

// RequisitionMetrics turns requisition events and sync runs into metrics.
// It subscribes to the event bus and wraps the sync run recorder.
type RequisitionMetrics struct {
	created      *Counter
	transitions  *Counter
	unitsMoved   *Counter
	synced       *Counter
	syncRuns     *Counter
	syncInserted *Counter
	syncDuration *Histogram
}

// NewRequisitionMetrics registers the instruments on meter. A non-nil
// counter also publishes a per-status gauge.
func NewRequisitionMetrics(meter metric.Meter, counter StatusCounter) (*RequisitionMetrics, error) {
	m := &RequisitionMetrics{}
	var err error

	if m.created, err = NewCounter(meter, "requisition_created_total",
		"Requisitions opened locally", "{requisition}"); err != nil {
		return nil, err
	}
	if m.transitions, err = NewCounter(meter, "requisition_transition_total",
		"Accepted status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.unitsMoved, err = NewCounter(meter, "inventory_units_moved_total",
		"Units moved out of or into a location by transitions", "{unit}"); err != nil {
		return nil, err
	}
	if m.synced, err = NewCounter(meter, "requisition_synced_total",
		"External requisitions merged in", "{requisition}"); err != nil {
		return nil, err
	}
	if m.syncRuns, err = NewCounter(meter, "sync_run_total",
		"Finished sync runs by outcome", "{run}"); err != nil {
		return nil, err
	}
	if m.syncInserted, err = NewCounter(meter, "sync_inserted_total",
		"Requisitions inserted by sync runs", "{requisition}"); err != nil {
		return nil, err
	}
	if m.syncDuration, err = NewHistogram(meter, "sync_run_duration_seconds",
		"Duration of sync runs", "s", SyncDurationBuckets); err != nil {
		return nil, err
	}

	if counter != nil {
		_, err = meter.Int64ObservableGauge("requisition_status_count",
			metric.WithDescription("Requisitions currently in each status"),
			metric.WithUnit("{requisition}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				counts := counter.CountByStatus()
				for _, s := range requisition.AllStatuses() {
					o.Observe(int64(counts[s]), metric.WithAttributes(AttrStatus.String(s.String())))
				}
				return nil
			}))
		if err != nil {
			return nil, fmt.Errorf("failed to create gauge requisition_status_count: %w", err)
		}
	}
	return m, nil
}

// EventTypes implements EventHandler
func (m *RequisitionMetrics) EventTypes() []string {
	return []string{
		requisition.EventTypeCreated,
		requisition.EventTypeStatusChanged,
		requisition.EventTypeSynced,
	}
}

// Handle implements EventHandler
func (m *RequisitionMetrics) Handle(ctx context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *requisition.CreatedEvent:
		m.created.Inc(ctx, AttrItemID.String(e.ItemID))
	case *requisition.StatusChangedEvent:
		m.transitions.Inc(ctx, AttrFromStatus.String(e.From.String()), AttrToStatus.String(e.To.String()))
		if e.Moved > 0 {
			m.unitsMoved.Add(ctx, int64(e.Moved), AttrToStatus.String(e.To.String()), AttrItemID.String(e.ItemID))
		}
	case *requisition.SyncedEvent:
		m.synced.Inc(ctx, AttrItemID.String(e.ItemID))
	}
	return nil
}

// Recorder returns a RunRecorder that records run metrics and then passes
// the run to next (which may be nil)
func (m *RequisitionMetrics) Recorder(next appsync.RunRecorder) appsync.RunRecorder {
	return &meteredRecorder{metrics: m, next: next}
}

type meteredRecorder struct {
	metrics *RequisitionMetrics
	next    appsync.RunRecorder
}

func (r *meteredRecorder) Record(run appsync.Run) {
	ctx := context.Background()
	attrs := []attribute.KeyValue{
		AttrTrigger.String(string(run.Trigger)),
		AttrFeed.String(run.Feed),
		AttrStatus.String(string(run.Status)),
	}
	r.metrics.syncRuns.Inc(ctx, attrs...)
	if run.Status != appsync.RunStatusSkipped {
		r.metrics.syncDuration.RecordDuration(ctx, run.Duration, attrs...)
	}
	if run.Inserted > 0 {
		r.metrics.syncInserted.Add(ctx, int64(run.Inserted), AttrFeed.String(run.Feed))
	}
	if r.next != nil {
		r.next.Record(run)
	}
}

// TracedFeed wraps feed so every fetch gets a span
func TracedFeed(feed appsync.Feed) appsync.Feed {
	return tracedFeed{feed}
}

type tracedFeed struct {
	appsync.Feed
}

func (f tracedFeed) Fetch(ctx context.Context) (records []appreq.ExternalRequisition, err error) {
	ctx, span := StartSpan(ctx, "sync_feed", "fetch", AttrFeed.String(f.Name()))
	defer End(span, &err)

	records, err = f.Feed.Fetch(ctx)
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, err
}

var _ shared.EventHandler = (*RequisitionMetrics)(nil)
