package models

import (
	"time"

	"github.com/opsboard/backend/internal/domain/catalog"
)

// ItemModel is a catalog item
type ItemModel struct {
	ID        string `gorm:"type:varchar(64);primaryKey"`
	Name      string `gorm:"type:varchar(200);not null"`
	SKU       string `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Category  string `gorm:"type:varchar(100)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the model to a domain Item
func (m *ItemModel) ToDomain() catalog.Item {
	return catalog.Item{ID: m.ID, Name: m.Name, SKU: m.SKU, Category: m.Category}
}

// ItemModelFromDomain converts a domain Item to a model
func ItemModelFromDomain(i catalog.Item) *ItemModel {
	return &ItemModel{ID: i.ID, Name: i.Name, SKU: i.SKU, Category: i.Category}
}
