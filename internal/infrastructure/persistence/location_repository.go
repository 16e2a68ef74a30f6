package persistence

import (
	"context"
	"fmt"

	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocationRepository implements location.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// LoadAll returns every location ordered by id
func (r *GormLocationRepository) LoadAll(ctx context.Context) ([]location.Location, error) {
	var ms []models.LocationModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	out := make([]location.Location, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// SaveAll upserts locations by id
func (r *GormLocationRepository) SaveAll(ctx context.Context, locations []location.Location) error {
	if len(locations) == 0 {
		return nil
	}
	ms := make([]*models.LocationModel, len(locations))
	for i, l := range locations {
		ms[i] = models.LocationModelFromDomain(l)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "type", "parent_id", "updated_at"}),
	}).Create(&ms).Error
	if err != nil {
		return fmt.Errorf("save locations: %w", err)
	}
	return nil
}

var _ location.LocationRepository = (*GormLocationRepository)(nil)
