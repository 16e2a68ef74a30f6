package catalog

import "context"

// ItemRepository loads and seeds the item catalog
type ItemRepository interface {
	LoadAll(ctx context.Context) ([]Item, error)
	SaveAll(ctx context.Context, items []Item) error
}
