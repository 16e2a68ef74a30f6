package location

import (
	"strings"

	"github.com/opsboard/backend/internal/domain/shared"
)

// LocationType is the tier a location occupies in the hierarchy
type LocationType string

const (
	LocationTypeCentral LocationType = "CENTRAL"
	LocationTypeBranch  LocationType = "BRANCH"
	LocationTypeField   LocationType = "FIELD"
)

// IsValid checks if the type is a valid LocationType
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeCentral, LocationTypeBranch, LocationTypeField:
		return true
	}
	return false
}

// String returns the string representation of LocationType
func (t LocationType) String() string {
	return string(t)
}

// expectedParent returns the tier a location of this type must hang under.
// Central locations are roots and have no expected parent.
func (t LocationType) expectedParent() (LocationType, bool) {
	switch t {
	case LocationTypeBranch:
		return LocationTypeCentral, true
	case LocationTypeField:
		return LocationTypeBranch, true
	}
	return "", false
}

// Location is a site in the central -> branch -> field hierarchy
type Location struct {
	ID       string
	Name     string
	Type     LocationType
	ParentID string // empty for central locations
}

// NewLocation creates a location after checking its own fields.
// Parent/tier consistency is checked when the graph is built.
func NewLocation(id, name string, locType LocationType, parentID string) (*Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION_ID", "Location ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION_NAME", "Location name cannot be empty")
	}
	if !locType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION_TYPE", "Location type must be CENTRAL, BRANCH or FIELD")
	}
	return &Location{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Type:     locType,
		ParentID: strings.TrimSpace(parentID),
	}, nil
}

// IsRoot returns true if the location has no parent
func (l *Location) IsRoot() bool {
	return l.ParentID == ""
}
