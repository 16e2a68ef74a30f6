package catalog

import (
	"strings"

	"github.com/opsboard/backend/internal/domain/shared"
)

// Item is an immutable catalog entry
type Item struct {
	ID       string
	Name     string
	SKU      string
	Category string
}

// NewItem creates a catalog item
func NewItem(id, name, sku, category string) (*Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_ID", "Item ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_SKU", "Item SKU cannot be empty")
	}
	return &Item{
		ID:       id,
		Name:     strings.TrimSpace(name),
		SKU:      sku,
		Category: strings.TrimSpace(category),
	}, nil
}
