package location

import (
	"fmt"
	"sort"

	"github.com/opsboard/backend/internal/domain/shared"
)

// Graph is the immutable location forest. It is built once at startup and
// only read afterwards, so it is safe for concurrent use without locking.
type Graph struct {
	nodes       map[string]Location
	children    map[string][]string
	defaultRoot string
}

// NewGraph validates the tier invariants and builds the graph.
//
//   - CENTRAL has no parent
//   - BRANCH's parent is a CENTRAL location
//   - FIELD's parent is a BRANCH location
//
// defaultRoot is the location returned by ResolveSource for a root location.
// When empty, a root resolves to itself.
func NewGraph(locations []Location, defaultRoot string) (*Graph, error) {
	g := &Graph{
		nodes:       make(map[string]Location, len(locations)),
		children:    make(map[string][]string),
		defaultRoot: defaultRoot,
	}

	for _, loc := range locations {
		if _, dup := g.nodes[loc.ID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_LOCATION", fmt.Sprintf("Location %q is defined twice", loc.ID))
		}
		g.nodes[loc.ID] = loc
	}

	for _, loc := range locations {
		want, needsParent := loc.Type.expectedParent()
		if !needsParent {
			if loc.ParentID != "" {
				return nil, shared.NewDomainError("INVALID_HIERARCHY", fmt.Sprintf("Central location %q cannot have a parent", loc.ID))
			}
			continue
		}
		parent, ok := g.nodes[loc.ParentID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_HIERARCHY", fmt.Sprintf("Location %q has unknown parent %q", loc.ID, loc.ParentID))
		}
		if parent.Type != want {
			return nil, shared.NewDomainError("INVALID_HIERARCHY",
				fmt.Sprintf("%s location %q must have a %s parent, got %s", loc.Type, loc.ID, want, parent.Type))
		}
		g.children[loc.ParentID] = append(g.children[loc.ParentID], loc.ID)
	}

	for id := range g.children {
		sort.Strings(g.children[id])
	}

	if defaultRoot != "" {
		root, ok := g.nodes[defaultRoot]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeUnknownLocation, fmt.Sprintf("Default root %q is not a known location", defaultRoot))
		}
		if root.Type != LocationTypeCentral {
			return nil, shared.NewDomainError("INVALID_HIERARCHY", fmt.Sprintf("Default root %q must be a central location", defaultRoot))
		}
	}

	return g, nil
}

// Get returns the location with the given id
func (g *Graph) Get(id string) (Location, bool) {
	loc, ok := g.nodes[id]
	return loc, ok
}

// Contains reports whether the id is a known location
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// DefaultRoot returns the configured fallback source location
func (g *Graph) DefaultRoot() string {
	return g.defaultRoot
}

// ResolveSource returns the location that fulfils requests raised at id: its
// parent, or the configured default root (falling back to id itself) when
// the location has no parent. An unknown id yields "".
func (g *Graph) ResolveSource(id string) string {
	loc, ok := g.nodes[id]
	if !ok {
		return ""
	}
	if loc.ParentID != "" {
		return loc.ParentID
	}
	if g.defaultRoot != "" {
		return g.defaultRoot
	}
	return loc.ID
}

// DescendantsOf returns id itself plus every location whose parent chain
// passes through it. An unknown id yields an empty set.
func (g *Graph) DescendantsOf(id string) map[string]struct{} {
	out := make(map[string]struct{})
	if _, ok := g.nodes[id]; !ok {
		return out
	}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[cur]; seen {
			continue
		}
		out[cur] = struct{}{}
		stack = append(stack, g.children[cur]...)
	}
	return out
}

// IsWithin reports whether target lies in the subtree rooted at scope
func (g *Graph) IsWithin(scope, target string) bool {
	_, ok := g.DescendantsOf(scope)[target]
	return ok
}

// ChildrenOf returns the direct children of id in id order
func (g *Graph) ChildrenOf(id string) []string {
	kids := g.children[id]
	out := make([]string, len(kids))
	copy(out, kids)
	return out
}

// All returns every location ordered by tier then id
func (g *Graph) All() []Location {
	out := make([]Location, 0, len(g.nodes))
	for _, loc := range g.nodes {
		out = append(out, loc)
	}
	rank := map[LocationType]int{LocationTypeCentral: 0, LocationTypeBranch: 1, LocationTypeField: 2}
	sort.Slice(out, func(i, j int) bool {
		if rank[out[i].Type] != rank[out[j].Type] {
			return rank[out[i].Type] < rank[out[j].Type]
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of locations in the graph
func (g *Graph) Len() int {
	return len(g.nodes)
}
