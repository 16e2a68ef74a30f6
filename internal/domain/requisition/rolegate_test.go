package requisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/domain/shared"
)

func TestRoleGate_Authorize(t *testing.T) {
	gate := NewRoleGate(testGraph(t), nil)
	toField := newPending(t, "loc-nampula", "loc-field-a", 2)
	toBranch := newPending(t, "loc-central", "loc-nampula", 2)

	t.Run("admin may request anything", func(t *testing.T) {
		for _, s := range AllStatuses() {
			assert.NoError(t, gate.Authorize(toField, s, admin), s)
		}
	})

	t.Run("field worker may not approve even at own location", func(t *testing.T) {
		err := gate.Authorize(toField, StatusApproved, fieldA)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("field worker confirms only own target", func(t *testing.T) {
		assert.NoError(t, gate.Authorize(toField, StatusConfirmed, fieldA))
		assert.ErrorIs(t, gate.Authorize(toField, StatusConfirmed, fieldB), shared.ErrUnauthorized)
	})

	t.Run("manager delivers within subtree", func(t *testing.T) {
		assert.NoError(t, gate.Authorize(toField, StatusDelivered, manager))
		assert.NoError(t, gate.Authorize(toBranch, StatusDelivered, manager))
		assert.ErrorIs(t, gate.Authorize(toField, StatusDelivered, otherMgr), shared.ErrUnauthorized)
	})

	t.Run("manager may not approve", func(t *testing.T) {
		assert.ErrorIs(t, gate.Authorize(toField, StatusApproved, manager), shared.ErrUnauthorized)
	})
}

func TestRoleGate_CanCreate(t *testing.T) {
	gate := NewRoleGate(testGraph(t), nil)
	assert.ErrorIs(t, gate.CanCreate(admin), shared.ErrUnauthorized)
	assert.NoError(t, gate.CanCreate(manager))
	assert.NoError(t, gate.CanCreate(fieldA))
}

func TestRoleGate_CanView(t *testing.T) {
	gate := NewRoleGate(testGraph(t), nil)
	toField := newPending(t, "loc-nampula", "loc-field-a", 2)
	toBeira := newPending(t, "loc-central", "loc-beira", 2)
	toBeira.RequesterID = "u-someone"

	assert.True(t, gate.CanView(toBeira, admin))
	assert.True(t, gate.CanView(toField, manager))
	assert.False(t, gate.CanView(toBeira, manager))
	assert.True(t, gate.CanView(toBeira, otherMgr))
	assert.True(t, gate.CanView(toField, fieldA))
	assert.False(t, gate.CanView(toBeira, fieldB))
}

func TestRoleGate_AllowedNext(t *testing.T) {
	gate := NewRoleGate(testGraph(t), nil)
	r := newPending(t, "loc-nampula", "loc-field-a", 2)

	assert.ElementsMatch(t, []Status{StatusApproved, StatusRejected}, gate.AllowedNext(r, admin))
	assert.Empty(t, gate.AllowedNext(r, manager))

	r.Status = StatusInTransit
	assert.Equal(t, []Status{StatusDelivered}, gate.AllowedNext(r, manager))
}

func TestRoleGate_CustomPolicy(t *testing.T) {
	policy := append(DefaultPolicy(), Permission{Role: "BRANCH_MANAGER", Target: StatusApproved, Scope: ScopeTargetInSubtree})
	gate := NewRoleGate(testGraph(t), policy)
	r := newPending(t, "loc-nampula", "loc-field-a", 2)
	assert.NoError(t, gate.Authorize(r, StatusApproved, manager))
}

// subtrees maps a scope location to the locations it contains
type subtrees map[string][]string

func (s subtrees) IsWithin(scope, target string) bool {
	for _, id := range s[scope] {
		if id == target {
			return true
		}
	}
	return false
}

func TestRoleGate_UsesHierarchyForSubtreeScope(t *testing.T) {
	gate := NewRoleGate(subtrees{"loc-nampula": {"loc-nampula", "loc-depot"}}, nil)
	toDepot := newPending(t, "loc-central", "loc-depot", 2)
	toDepot.Status = StatusInTransit
	toBeira := newPending(t, "loc-central", "loc-beira", 2)
	toBeira.Status = StatusInTransit
	toBeira.RequesterID = "u-someone"

	assert.NoError(t, gate.Authorize(toDepot, StatusDelivered, manager))
	assert.ErrorIs(t, gate.Authorize(toBeira, StatusDelivered, manager), shared.ErrUnauthorized)
	assert.True(t, gate.CanView(toDepot, manager))
	assert.False(t, gate.CanView(toBeira, manager))
}
