package catalog

import (
	"fmt"
	"sort"

	"github.com/opsboard/backend/internal/domain/shared"
)

// Catalog is the read-only item lookup loaded at startup
type Catalog struct {
	items map[string]Item
	bySKU map[string]string
}

// NewCatalog builds a catalog, rejecting duplicate ids or SKUs
func NewCatalog(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make(map[string]Item, len(items)),
		bySKU: make(map[string]string, len(items)),
	}
	for _, it := range items {
		if _, dup := c.items[it.ID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", fmt.Sprintf("Item %q is defined twice", it.ID))
		}
		if other, dup := c.bySKU[it.SKU]; dup {
			return nil, shared.NewDomainError("DUPLICATE_SKU", fmt.Sprintf("SKU %q is used by %q and %q", it.SKU, other, it.ID))
		}
		c.items[it.ID] = it
		c.bySKU[it.SKU] = it.ID
	}
	return c, nil
}

// Get returns the item with the given id
func (c *Catalog) Get(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Require returns the item or an UnknownItem error
func (c *Catalog) Require(id string) (Item, error) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, shared.NewDomainError(shared.CodeUnknownItem, fmt.Sprintf("Item %q does not exist", id))
	}
	return it, nil
}

// Contains reports whether id is a known item
func (c *Catalog) Contains(id string) bool {
	_, ok := c.items[id]
	return ok
}

// BySKU looks an item up by SKU
func (c *Catalog) BySKU(sku string) (Item, bool) {
	id, ok := c.bySKU[sku]
	if !ok {
		return Item{}, false
	}
	return c.items[id], true
}

// All returns every item ordered by id
func (c *Catalog) All() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns every item id in order
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
