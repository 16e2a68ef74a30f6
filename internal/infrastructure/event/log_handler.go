package event

import (
	"context"

	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes every requisition event to the audit logger
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{logger: logger.Named("audit")}
}

// EventTypes subscribes to all requisition events
func (h *LogHandler) EventTypes() []string {
	return []string{
		requisition.EventTypeCreated,
		requisition.EventTypeStatusChanged,
		requisition.EventTypeSynced,
	}
}

// Handle logs the event with its payload fields
func (h *LogHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", ev.EventID().String()),
		zap.String("event_type", ev.EventType()),
		zap.String("requisition_id", ev.AggregateID()),
		zap.Time("occurred_at", ev.OccurredAt()),
	}

	switch e := ev.(type) {
	case *requisition.CreatedEvent:
		fields = append(fields,
			zap.String("requester_id", e.RequesterID),
			zap.String("item_id", e.ItemID),
			zap.Int("quantity", e.Quantity),
			zap.String("source", e.SourceLocationID),
			zap.String("target", e.TargetLocationID))
	case *requisition.StatusChangedEvent:
		fields = append(fields,
			zap.String("from", e.From.String()),
			zap.String("to", e.To.String()),
			zap.String("actor_id", e.ActorID),
			zap.Int("moved", e.Moved))
	case *requisition.SyncedEvent:
		fields = append(fields,
			zap.String("item_id", e.ItemID),
			zap.Int("quantity", e.Quantity),
			zap.String("target", e.TargetLocationID))
	}

	h.logger.Info("Requisition event", fields...)
	return nil
}

var _ shared.EventHandler = (*LogHandler)(nil)
