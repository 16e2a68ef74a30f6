package requisition

import (
	"fmt"
	"time"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/shared"
)

// Outcome is an accepted transition. The caller must persist Requisition
// and apply Deltas together, or neither.
type Outcome struct {
	Requisition *Requisition
	From        Status
	To          Status
	Deltas      []inventory.Delta
	Entry       LogEntry
}

// StateMachine decides requisition transitions without side effects
type StateMachine struct {
	gate *RoleGate
	now  func() time.Time
}

// Option configures a StateMachine
type Option func(*StateMachine)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *StateMachine) { m.now = now }
}

// NewStateMachine creates a state machine that authorizes through gate
func NewStateMachine(gate *RoleGate, opts ...Option) *StateMachine {
	m := &StateMachine{gate: gate, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Gate returns the role gate used for authorization
func (m *StateMachine) Gate() *RoleGate {
	return m.gate
}

// AttemptTransition evaluates moving req to desired on behalf of actor.
// Checks run in order: authorization, transition table, stock. req itself is
// never modified; on success the new state is in Outcome.Requisition.
func (m *StateMachine) AttemptTransition(req *Requisition, desired Status, actor identity.Actor, stock inventory.Reader) (*Outcome, error) {
	if !desired.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown status %q", desired))
	}
	if err := m.gate.Authorize(req, desired, actor); err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(desired) {
		return nil, shared.NewDomainError(shared.CodeIllegalTransition,
			fmt.Sprintf("Cannot move requisition %s from %s to %s", req.ID, req.Status, desired))
	}

	deltas, err := m.deltasFor(req, desired, stock)
	if err != nil {
		return nil, err
	}

	now := m.now()
	next := req.Clone()
	next.Status = desired
	next.UpdatedAt = now
	next.IncrementVersion()
	entry := newLogEntry(now, actor.UserID, LogActionStatusChange,
		fmt.Sprintf("status %s → %s by %s", req.Status, desired, actor))
	next.Logs = append(next.Logs, entry)
	next.AddDomainEvent(NewStatusChangedEvent(next, req.Status, actor.UserID))

	return &Outcome{
		Requisition: next,
		From:        req.Status,
		To:          desired,
		Deltas:      deltas,
		Entry:       entry,
	}, nil
}

func (m *StateMachine) deltasFor(req *Requisition, desired Status, stock inventory.Reader) ([]inventory.Delta, error) {
	switch desired {
	case StatusInTransit:
		have := stock.QuantityAt(req.SourceLocationID, req.ItemID)
		if have < req.Quantity {
			return nil, shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("%s holds %d of %s, requisition %s needs %d", req.SourceLocationID, have, req.ItemID, req.ID, req.Quantity))
		}
		return []inventory.Delta{{LocationID: req.SourceLocationID, ItemID: req.ItemID, Amount: -req.Quantity}}, nil
	case StatusDelivered:
		return []inventory.Delta{{LocationID: req.TargetLocationID, ItemID: req.ItemID, Amount: req.Quantity}}, nil
	}
	return nil, nil
}
