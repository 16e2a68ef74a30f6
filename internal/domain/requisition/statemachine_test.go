package requisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/shared"
)

func TestStateMachine_FullLifecycle(t *testing.T) {
	m := newMachine(t)
	stock := stubStock{"loc-central/it-chainsaw": 50}
	r := newPending(t, "loc-central", "loc-nampula", 5)

	out, err := m.AttemptTransition(r, StatusApproved, admin, stock)
	require.NoError(t, err)
	assert.Empty(t, out.Deltas)
	assert.Equal(t, StatusPending, r.Status, "input is not modified")
	r = out.Requisition

	out, err = m.AttemptTransition(r, StatusInTransit, admin, stock)
	require.NoError(t, err)
	assert.Equal(t, []inventory.Delta{{LocationID: "loc-central", ItemID: "it-chainsaw", Amount: -5}}, out.Deltas)
	r = out.Requisition

	out, err = m.AttemptTransition(r, StatusDelivered, manager, stock)
	require.NoError(t, err)
	assert.Equal(t, []inventory.Delta{{LocationID: "loc-nampula", ItemID: "it-chainsaw", Amount: 5}}, out.Deltas)
	r = out.Requisition

	out, err = m.AttemptTransition(r, StatusConfirmed, admin, stock)
	require.NoError(t, err)
	assert.Empty(t, out.Deltas)
	r = out.Requisition

	assert.Equal(t, StatusConfirmed, r.Status)
	assert.Equal(t, 5, r.Version)
	require.Len(t, r.Logs, 5)
	assert.Equal(t, LogActionCreate, r.Logs[0].Action)
	for _, e := range r.Logs[1:] {
		assert.Equal(t, LogActionStatusChange, e.Action)
	}
	assert.Equal(t, "status PENDING → APPROVED by u-admin (ADMIN)", r.Logs[1].Message)
	assert.Equal(t, "status DELIVERED → CONFIRMED by u-admin (ADMIN)", r.Logs[4].Message)
}

func TestStateMachine_RejectsRepeatedTransition(t *testing.T) {
	m := newMachine(t)
	r := newPending(t, "loc-central", "loc-nampula", 5)
	r.Status = StatusDelivered

	_, err := m.AttemptTransition(r, StatusDelivered, admin, stubStock{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrIllegalTransition)

	_, err = m.AttemptTransition(r, StatusDelivered, manager, stubStock{})
	assert.ErrorIs(t, err, shared.ErrIllegalTransition)
}

func TestStateMachine_InsufficientStock(t *testing.T) {
	m := newMachine(t)
	r := newPending(t, "loc-central", "loc-nampula", 100)
	r.Status = StatusApproved

	out, err := m.AttemptTransition(r, StatusInTransit, admin, stubStock{"loc-central/it-chainsaw": 50})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, StatusApproved, r.Status)
	assert.Len(t, r.Logs, 1)
}

func TestStateMachine_ExactStockIsEnough(t *testing.T) {
	m := newMachine(t)
	r := newPending(t, "loc-central", "loc-nampula", 50)
	r.Status = StatusApproved

	_, err := m.AttemptTransition(r, StatusInTransit, admin, stubStock{"loc-central/it-chainsaw": 50})
	assert.NoError(t, err)
}

func TestStateMachine_AuthorizationBeforeTable(t *testing.T) {
	m := newMachine(t)
	r := newPending(t, "loc-nampula", "loc-field-a", 1)

	_, err := m.AttemptTransition(r, StatusApproved, fieldA, stubStock{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// illegal edge requested by an under-privileged actor reports the authorization failure
	_, err = m.AttemptTransition(r, StatusInTransit, fieldA, stubStock{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestStateMachine_TerminalStatesAreFinal(t *testing.T) {
	m := newMachine(t)
	for _, terminal := range []Status{StatusRejected, StatusConfirmed} {
		r := newPending(t, "loc-central", "loc-nampula", 1)
		r.Status = terminal
		for _, s := range AllStatuses() {
			_, err := m.AttemptTransition(r, s, admin, stubStock{})
			assert.ErrorIs(t, err, shared.ErrIllegalTransition, "%s -> %s", terminal, s)
		}
	}
}

func TestStateMachine_UnknownStatus(t *testing.T) {
	m := newMachine(t)
	r := newPending(t, "loc-central", "loc-nampula", 1)
	_, err := m.AttemptTransition(r, Status("LOST"), admin, stubStock{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestStateMachine_EmitsStatusChangedEvent(t *testing.T) {
	m := newMachine(t)
	r := newPending(t, "loc-central", "loc-nampula", 1)

	out, err := m.AttemptTransition(r, StatusRejected, admin, stubStock{})
	require.NoError(t, err)
	events := out.Requisition.GetDomainEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*StatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusPending, ev.From)
	assert.Equal(t, StatusRejected, ev.To)
	assert.Equal(t, fixedTime, out.Entry.Timestamp)
}
