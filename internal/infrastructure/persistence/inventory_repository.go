package persistence

import (
	"context"
	"fmt"

	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements inventory.InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

var upsertQuantity = clause.OnConflict{
	Columns:   []clause.Column{{Name: "location_id"}, {Name: "item_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
}

// LoadAll returns every record ordered by location then item
func (r *GormInventoryRepository) LoadAll(ctx context.Context) ([]inventory.Record, error) {
	var ms []models.InventoryRecordModel
	if err := r.db.WithContext(ctx).Order("location_id ASC, item_id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	out := make([]inventory.Record, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts one record by (location, item)
func (r *GormInventoryRepository) Save(ctx context.Context, record inventory.Record) error {
	m := models.InventoryRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Clauses(upsertQuantity).Create(m).Error; err != nil {
		return fmt.Errorf("save inventory %s/%s: %w", record.LocationID, record.ItemID, err)
	}
	return nil
}

// SaveAll upserts every record
func (r *GormInventoryRepository) SaveAll(ctx context.Context, records []inventory.Record) error {
	if len(records) == 0 {
		return nil
	}
	ms := make([]*models.InventoryRecordModel, len(records))
	for i, rec := range records {
		ms[i] = models.InventoryRecordModelFromDomain(rec)
	}
	if err := r.db.WithContext(ctx).Clauses(upsertQuantity).Create(&ms).Error; err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

var _ inventory.InventoryRepository = (*GormInventoryRepository)(nil)
