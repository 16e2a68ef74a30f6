package requisition

import "github.com/opsboard/backend/internal/domain/shared"

// AggregateTypeRequisition is the aggregate type carried by requisition events
const AggregateTypeRequisition = "Requisition"

// Requisition event type constants
const (
	EventTypeCreated       = "requisition.created"
	EventTypeStatusChanged = "requisition.status_changed"
	EventTypeSynced        = "requisition.synced"
)

// CreatedEvent is raised when a requisition is opened locally
type CreatedEvent struct {
	shared.BaseDomainEvent
	RequesterID      string `json:"requester_id"`
	SourceLocationID string `json:"source_location_id"`
	TargetLocationID string `json:"target_location_id"`
	ItemID           string `json:"item_id"`
	Quantity         int    `json:"quantity"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(r *Requisition) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreated, AggregateTypeRequisition, r.ID, r.CreatedAt),
		RequesterID:      r.RequesterID,
		SourceLocationID: r.SourceLocationID,
		TargetLocationID: r.TargetLocationID,
		ItemID:           r.ItemID,
		Quantity:         r.Quantity,
	}
}

// StatusChangedEvent is raised after an accepted transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	From    Status `json:"from"`
	To      Status `json:"to"`
	ActorID string `json:"actor_id"`
	ItemID  string `json:"item_id"`
	Moved   int    `json:"moved"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(r *Requisition, from Status, actorID string) *StatusChangedEvent {
	moved := 0
	if r.Status == StatusInTransit || r.Status == StatusDelivered {
		moved = r.Quantity
	}
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, AggregateTypeRequisition, r.ID, r.UpdatedAt),
		From:            from,
		To:              r.Status,
		ActorID:         actorID,
		ItemID:          r.ItemID,
		Moved:           moved,
	}
}

// SyncedEvent is raised when an externally created requisition is merged in
type SyncedEvent struct {
	shared.BaseDomainEvent
	TargetLocationID string `json:"target_location_id"`
	ItemID           string `json:"item_id"`
	Quantity         int    `json:"quantity"`
}

// NewSyncedEvent creates a new SyncedEvent
func NewSyncedEvent(r *Requisition) *SyncedEvent {
	return &SyncedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSynced, AggregateTypeRequisition, r.ID, r.UpdatedAt),
		TargetLocationID: r.TargetLocationID,
		ItemID:           r.ItemID,
		Quantity:         r.Quantity,
	}
}
