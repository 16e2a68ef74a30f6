package requisition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/location"
)

var (
	admin     = identity.Actor{UserID: "u-admin", Role: identity.RoleAdmin, LocationID: "loc-central"}
	manager   = identity.Actor{UserID: "u-manager", Role: identity.RoleBranchManager, LocationID: "loc-nampula"}
	otherMgr  = identity.Actor{UserID: "u-beira-mgr", Role: identity.RoleBranchManager, LocationID: "loc-beira"}
	fieldA    = identity.Actor{UserID: "u-field-a", Role: identity.RoleFieldWorker, LocationID: "loc-field-a"}
	fieldB    = identity.Actor{UserID: "u-field-b", Role: identity.RoleFieldWorker, LocationID: "loc-field-b"}
	fixedTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func testGraph(t *testing.T) *location.Graph {
	t.Helper()
	g, err := location.NewGraph([]location.Location{
		{ID: "loc-central", Name: "Central", Type: location.LocationTypeCentral},
		{ID: "loc-nampula", Name: "Nampula", Type: location.LocationTypeBranch, ParentID: "loc-central"},
		{ID: "loc-beira", Name: "Beira", Type: location.LocationTypeBranch, ParentID: "loc-central"},
		{ID: "loc-field-a", Name: "Field A", Type: location.LocationTypeField, ParentID: "loc-nampula"},
		{ID: "loc-field-b", Name: "Field B", Type: location.LocationTypeField, ParentID: "loc-nampula"},
	}, "loc-central")
	require.NoError(t, err)
	return g
}

func newMachine(t *testing.T) *StateMachine {
	t.Helper()
	return NewStateMachine(NewRoleGate(testGraph(t), nil), WithClock(func() time.Time { return fixedTime }))
}

func newPending(t *testing.T, source, target string, qty int) *Requisition {
	t.Helper()
	r, err := New(NewParams{
		RequesterID:      "u-field-a",
		SourceLocationID: source,
		TargetLocationID: target,
		ItemID:           "it-chainsaw",
		Quantity:         qty,
	}, fixedTime)
	require.NoError(t, err)
	return r
}

type stubStock map[string]int

func (s stubStock) QuantityAt(locationID, itemID string) int {
	return s[locationID+"/"+itemID]
}
