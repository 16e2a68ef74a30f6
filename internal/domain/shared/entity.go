package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with a stable string id and audit timestamps
type Entity interface {
	GetID() string
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the id and timestamps embedded by every aggregate.
// Ids are opaque strings so externally created records keep theirs.
type BaseEntity struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() string           { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// NewBaseEntity stamps a fresh random id with both timestamps set to now
func NewBaseEntity(now time.Time) BaseEntity {
	return BaseEntity{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
}
