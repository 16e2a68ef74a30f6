package requisition

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsboard/backend/internal/domain/shared"
)

// Origin tells where a requisition was first created
type Origin string

const (
	OriginLocal    Origin = "LOCAL"
	OriginExternal Origin = "EXTERNAL"
)

// Requisition is a request to move a quantity of one item from a source
// location to a target location. Its status only changes through the
// StateMachine and its log is append-only.
type Requisition struct {
	shared.BaseAggregateRoot
	RequesterID      string
	SourceLocationID string
	TargetLocationID string
	ItemID           string
	Quantity         int
	Status           Status
	Origin           Origin
	Logs             []LogEntry
}

// NewParams carries the fields needed to open a requisition
type NewParams struct {
	RequesterID      string
	SourceLocationID string
	TargetLocationID string
	ItemID           string
	Quantity         int
}

func (p NewParams) validate() error {
	if strings.TrimSpace(p.RequesterID) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Requester ID cannot be empty")
	}
	if strings.TrimSpace(p.ItemID) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Item ID cannot be empty")
	}
	if strings.TrimSpace(p.SourceLocationID) == "" || strings.TrimSpace(p.TargetLocationID) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Source and target locations are required")
	}
	if p.Quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	return nil
}

// New opens a PENDING requisition with a CREATE log entry
func New(p NewParams, now time.Time) (*Requisition, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	r := &Requisition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		RequesterID:       p.RequesterID,
		SourceLocationID:  p.SourceLocationID,
		TargetLocationID:  p.TargetLocationID,
		ItemID:            p.ItemID,
		Quantity:          p.Quantity,
		Status:            StatusPending,
		Origin:            OriginLocal,
	}
	r.Logs = []LogEntry{newLogEntry(now, p.RequesterID, LogActionCreate,
		fmt.Sprintf("requested %d x %s for %s from %s", p.Quantity, p.ItemID, p.TargetLocationID, p.SourceLocationID))}
	r.AddDomainEvent(NewCreatedEvent(r))
	return r, nil
}

// Import rebuilds a requisition that was created elsewhere, keeping its id
// and creation time. Only PENDING records can be imported: a later status
// would imply ledger movements this ledger never saw.
func Import(id string, p NewParams, status Status, createdAt, now time.Time) (*Requisition, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "External requisition ID cannot be empty")
	}
	if status != StatusPending {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("External requisition %s has status %s, only PENDING can be imported", id, status))
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if createdAt.IsZero() {
		createdAt = now
	}
	r := &Requisition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(createdAt),
		RequesterID:       p.RequesterID,
		SourceLocationID:  p.SourceLocationID,
		TargetLocationID:  p.TargetLocationID,
		ItemID:            p.ItemID,
		Quantity:          p.Quantity,
		Status:            StatusPending,
		Origin:            OriginExternal,
	}
	r.ID = id
	r.UpdatedAt = now
	r.Logs = []LogEntry{newLogEntry(createdAt, p.RequesterID, LogActionCreate,
		fmt.Sprintf("requested %d x %s for %s from %s (synced)", p.Quantity, p.ItemID, p.TargetLocationID, p.SourceLocationID))}
	r.AddDomainEvent(NewSyncedEvent(r))
	return r, nil
}

// Clone returns a deep copy with no pending domain events
func (r *Requisition) Clone() *Requisition {
	c := *r
	c.Logs = make([]LogEntry, len(r.Logs))
	copy(c.Logs, r.Logs)
	c.ClearDomainEvents()
	return &c
}

// IsTerminal returns true when no further transitions are possible
func (r *Requisition) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// LastLog returns the most recent log entry
func (r *Requisition) LastLog() (LogEntry, bool) {
	if len(r.Logs) == 0 {
		return LogEntry{}, false
	}
	return r.Logs[len(r.Logs)-1], true
}
