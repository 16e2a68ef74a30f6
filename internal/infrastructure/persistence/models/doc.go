// Package models holds the GORM persistence models. Each model converts to
// and from its domain type with ToDomain / FromDomain; domain packages never
// carry gorm tags.
package models

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&LocationModel{},
		&ItemModel{},
		&InventoryRecordModel{},
		&UserModel{},
		&RequisitionModel{},
		&RequisitionLogModel{},
	}
}
