package inventory

import "context"

// InventoryRepository persists ledger records
type InventoryRepository interface {
	// LoadAll returns every stored record
	LoadAll(ctx context.Context) ([]Record, error)

	// Save upserts a single record by (location, item)
	Save(ctx context.Context, record Record) error

	// SaveAll upserts every record
	SaveAll(ctx context.Context, records []Record) error
}
