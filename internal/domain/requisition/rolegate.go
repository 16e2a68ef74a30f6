package requisition

import (
	"fmt"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/shared"
)

// Hierarchy is the part of the location graph the gate needs
type Hierarchy interface {
	IsWithin(scope, target string) bool
}

// Scope restricts which requisitions a permission applies to
type Scope string

const (
	// ScopeAny applies to every requisition
	ScopeAny Scope = "ANY"
	// ScopeTargetInSubtree applies when the target lies under the actor's location
	ScopeTargetInSubtree Scope = "TARGET_IN_SUBTREE"
	// ScopeTargetIsOwn applies when the target is the actor's own location
	ScopeTargetIsOwn Scope = "TARGET_IS_OWN"
)

// AnyStatus matches every requested status in a Permission
const AnyStatus Status = "*"

// Permission lets a role request one status under a scope. Each
// non-initial status has exactly one incoming edge in the transition table,
// so naming the requested status names the edge.
type Permission struct {
	Role   identity.Role
	Target Status
	Scope  Scope
}

// Policy is the full capability table evaluated by the RoleGate
type Policy []Permission

// DefaultPolicy is the capability table in force for the organisation
func DefaultPolicy() Policy {
	return Policy{
		{Role: identity.RoleAdmin, Target: AnyStatus, Scope: ScopeAny},
		{Role: identity.RoleBranchManager, Target: StatusDelivered, Scope: ScopeTargetInSubtree},
		{Role: identity.RoleFieldWorker, Target: StatusConfirmed, Scope: ScopeTargetIsOwn},
	}
}

// RoleGate answers "may this actor do this to this requisition"
type RoleGate struct {
	policy    Policy
	hierarchy Hierarchy
}

// NewRoleGate creates a gate. A nil policy means DefaultPolicy.
func NewRoleGate(hierarchy Hierarchy, policy Policy) *RoleGate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &RoleGate{policy: policy, hierarchy: hierarchy}
}

// Authorize checks that actor may move req to desired. It does not look at
// the transition table.
func (g *RoleGate) Authorize(req *Requisition, desired Status, actor identity.Actor) error {
	for _, p := range g.policy {
		if p.Role != actor.Role {
			continue
		}
		if p.Target != AnyStatus && p.Target != desired {
			continue
		}
		if g.inScope(p.Scope, req, actor) {
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeUnauthorized,
		fmt.Sprintf("%s may not move requisition %s to %s", actor, req.ID, desired))
}

// CanCreate checks whether the actor may open requisitions
func (g *RoleGate) CanCreate(actor identity.Actor) error {
	if !actor.Role.IsValid() {
		return shared.NewDomainError(shared.CodeUnauthorized, "Unknown role "+actor.Role.String())
	}
	if actor.IsAdmin() {
		return shared.NewDomainError(shared.CodeUnauthorized, "Administrators do not raise requisitions")
	}
	return nil
}

// CanView reports whether the requisition belongs in the actor's views.
// Admins see everything, managers see anything touching their subtree and
// field workers see requisitions for their own location or raised by them.
func (g *RoleGate) CanView(req *Requisition, actor identity.Actor) bool {
	switch actor.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleBranchManager:
		return g.hierarchy.IsWithin(actor.LocationID, req.SourceLocationID) ||
			g.hierarchy.IsWithin(actor.LocationID, req.TargetLocationID)
	case identity.RoleFieldWorker:
		return req.TargetLocationID == actor.LocationID || req.RequesterID == actor.UserID
	}
	return false
}

// AllowedNext lists the statuses the actor could move req to right now
func (g *RoleGate) AllowedNext(req *Requisition, actor identity.Actor) []Status {
	out := make([]Status, 0)
	for _, next := range req.Status.NextStatuses() {
		if g.Authorize(req, next, actor) == nil {
			out = append(out, next)
		}
	}
	return out
}

func (g *RoleGate) inScope(scope Scope, req *Requisition, actor identity.Actor) bool {
	switch scope {
	case ScopeAny:
		return true
	case ScopeTargetInSubtree:
		return g.hierarchy.IsWithin(actor.LocationID, req.TargetLocationID)
	case ScopeTargetIsOwn:
		return actor.LocationID != "" && req.TargetLocationID == actor.LocationID
	}
	return false
}
