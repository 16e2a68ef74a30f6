package requisition

import "context"

// RequisitionRepository persists requisitions and their logs
type RequisitionRepository interface {
	// FindAll returns every requisition with its logs, newest first
	FindAll(ctx context.Context) ([]*Requisition, error)

	// FindByID returns one requisition with its logs
	FindByID(ctx context.Context, id string) (*Requisition, error)

	// ExistsByID reports whether a requisition with the id is stored
	ExistsByID(ctx context.Context, id string) (bool, error)

	// Create inserts a new requisition and its initial logs
	Create(ctx context.Context, r *Requisition) error

	// SaveWithLock writes r if the stored version is r.Version-1 and
	// appends any logs not yet stored. A version mismatch returns
	// shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, r *Requisition) error
}
