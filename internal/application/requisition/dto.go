package requisition

import (
	"time"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/requisition"
)

// CreateRequest opens a requisition for the requester's own location
type CreateRequest struct {
	ItemID      string
	Quantity    int
	RequesterID string
}

// UpdateStatusRequest asks for one transition. ExpectedStatus and
// ExpectedVersion, when set, must match the stored requisition.
type UpdateStatusRequest struct {
	ID              string
	Status          requisition.Status
	Actor           identity.Actor
	ExpectedStatus  *requisition.Status
	ExpectedVersion *int
}

// BulkStatusRequest applies the same transition to several requisitions
type BulkStatusRequest struct {
	IDs    []string
	Status requisition.Status
	Actor  identity.Actor
}

// BulkFailure describes one requisition a bulk call could not move
type BulkFailure struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkResult reports a partially applied bulk transition
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// ListFilter narrows role-scoped listings
type ListFilter struct {
	Status   requisition.Status
	ItemID   string
	Page     int
	PageSize int
}

// LogEntryResponse is one audit line
type LogEntryResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
}

// RequisitionResponse represents a requisition in API responses
type RequisitionResponse struct {
	ID               string             `json:"id"`
	RequesterID      string             `json:"requester_id"`
	SourceLocationID string             `json:"source_location_id"`
	TargetLocationID string             `json:"target_location_id"`
	ItemID           string             `json:"item_id"`
	ItemName         string             `json:"item_name,omitempty"`
	Quantity         int                `json:"quantity"`
	Status           string             `json:"status"`
	Origin           string             `json:"origin"`
	Version          int                `json:"version"`
	AllowedNext      []string           `json:"allowed_next"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Logs             []LogEntryResponse `json:"logs"`
}

// InventoryRecordResponse represents a ledger balance in API responses
type InventoryRecordResponse struct {
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExternalRequisition is a requisition observed on an external feed
type ExternalRequisition struct {
	ID               string    `json:"id"`
	RequesterID      string    `json:"requester_id"`
	TargetLocationID string    `json:"target_location_id"`
	ItemID           string    `json:"item_id"`
	Quantity         int       `json:"quantity"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// SkippedRecord is an external record that was not merged
type SkippedRecord struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// MergeResult reports what a merge added
type MergeResult struct {
	Inserted []RequisitionResponse `json:"inserted"`
	Skipped  []SkippedRecord       `json:"skipped"`
	Known    int                   `json:"known"`
}

func toLogEntryResponses(entries []requisition.LogEntry) []LogEntryResponse {
	out := make([]LogEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LogEntryResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Message:   e.Message,
		}
	}
	return out
}

func (s *Store) toResponse(r *requisition.Requisition, actor *identity.Actor) RequisitionResponse {
	resp := RequisitionResponse{
		ID:               r.ID,
		RequesterID:      r.RequesterID,
		SourceLocationID: r.SourceLocationID,
		TargetLocationID: r.TargetLocationID,
		ItemID:           r.ItemID,
		Quantity:         r.Quantity,
		Status:           string(r.Status),
		Origin:           string(r.Origin),
		Version:          r.Version,
		AllowedNext:      []string{},
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Logs:             toLogEntryResponses(r.Logs),
	}
	if it, ok := s.catalog.Get(r.ItemID); ok {
		resp.ItemName = it.Name
	}
	if actor != nil {
		for _, next := range s.machine.Gate().AllowedNext(r, *actor) {
			resp.AllowedNext = append(resp.AllowedNext, string(next))
		}
	}
	return resp
}

func (s *Store) toInventoryResponse(rec inventory.Record) InventoryRecordResponse {
	resp := InventoryRecordResponse{
		LocationID: rec.LocationID,
		ItemID:     rec.ItemID,
		Quantity:   rec.Quantity,
		UpdatedAt:  rec.UpdatedAt,
	}
	if loc, ok := s.graph.Get(rec.LocationID); ok {
		resp.LocationName = loc.Name
	}
	if it, ok := s.catalog.Get(rec.ItemID); ok {
		resp.ItemName = it.Name
		resp.SKU = it.SKU
	}
	return resp
}
