package persistence

import (
	"context"
	"fmt"

	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// LoadAll returns every catalog item ordered by id
func (r *GormItemRepository) LoadAll(ctx context.Context) ([]catalog.Item, error) {
	var ms []models.ItemModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	out := make([]catalog.Item, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// SaveAll upserts items by id
func (r *GormItemRepository) SaveAll(ctx context.Context, items []catalog.Item) error {
	if len(items) == 0 {
		return nil
	}
	ms := make([]*models.ItemModel, len(items))
	for i, it := range items {
		ms[i] = models.ItemModelFromDomain(it)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "sku", "category", "updated_at"}),
	}).Create(&ms).Error
	if err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	return nil
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)
