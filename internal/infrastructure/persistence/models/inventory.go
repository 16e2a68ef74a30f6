package models

import (
	"time"

	"github.com/opsboard/backend/internal/domain/inventory"
)

// InventoryRecordModel is the balance of one item at one location
type InventoryRecordModel struct {
	LocationID string    `gorm:"type:varchar(64);primaryKey"`
	ItemID     string    `gorm:"type:varchar(64);primaryKey"`
	Quantity   int       `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryRecordModel) TableName() string {
	return "inventory_records"
}

// ToDomain converts the model to a domain Record
func (m *InventoryRecordModel) ToDomain() inventory.Record {
	return inventory.Record{
		ItemID:     m.ItemID,
		LocationID: m.LocationID,
		Quantity:   m.Quantity,
		UpdatedAt:  m.UpdatedAt,
	}
}

// InventoryRecordModelFromDomain converts a domain Record to a model
func InventoryRecordModelFromDomain(r inventory.Record) *InventoryRecordModel {
	return &InventoryRecordModel{
		LocationID: r.LocationID,
		ItemID:     r.ItemID,
		Quantity:   r.Quantity,
		UpdatedAt:  r.UpdatedAt,
	}
}
