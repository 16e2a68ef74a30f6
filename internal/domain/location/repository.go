package location

import "context"

// LocationRepository loads the location hierarchy from persistence
type LocationRepository interface {
	// LoadAll returns every configured location
	LoadAll(ctx context.Context) ([]Location, error)

	// SaveAll inserts or updates the given locations (used by seeding)
	SaveAll(ctx context.Context, locations []Location) error
}
