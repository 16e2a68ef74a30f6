package inventory

import "time"

// Key identifies an inventory record
type Key struct {
	LocationID string
	ItemID     string
}

// Record is the quantity of one item held at one location
type Record struct {
	ItemID     string
	LocationID string
	Quantity   int
	UpdatedAt  time.Time
}

// Key returns the composite key of the record
func (r Record) Key() Key {
	return Key{LocationID: r.LocationID, ItemID: r.ItemID}
}

// Delta is a signed quantity change to apply to one (location, item) pair
type Delta struct {
	LocationID string
	ItemID     string
	Amount     int
}

// Key returns the pair the delta applies to
func (d Delta) Key() Key {
	return Key{LocationID: d.LocationID, ItemID: d.ItemID}
}
