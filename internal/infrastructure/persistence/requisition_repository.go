package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRequisitionRepository implements requisition.RequisitionRepository using GORM
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new GormRequisitionRepository
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

func orderedLogs(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

// FindAll returns every requisition with its logs, newest first
func (r *GormRequisitionRepository) FindAll(ctx context.Context) ([]*requisition.Requisition, error) {
	var ms []models.RequisitionModel
	err := r.db.WithContext(ctx).
		Preload("Logs", orderedLogs).
		Order("created_at DESC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("load requisitions: %w", err)
	}
	out := make([]*requisition.Requisition, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// FindByID returns one requisition with its logs
func (r *GormRequisitionRepository) FindByID(ctx context.Context, id string) (*requisition.Requisition, error) {
	var m models.RequisitionModel
	err := r.db.WithContext(ctx).Preload("Logs", orderedLogs).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find requisition %s: %w", id, err)
	}
	return m.ToDomain(), nil
}

// ExistsByID reports whether a requisition with the id is stored
func (r *GormRequisitionRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RequisitionModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check requisition %s: %w", id, err)
	}
	return count > 0, nil
}

// Create inserts a new requisition and its logs
func (r *GormRequisitionRepository) Create(ctx context.Context, req *requisition.Requisition) error {
	m := models.RequisitionModelFromDomain(req)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		return fmt.Errorf("create requisition %s: %w", req.ID, err)
	}
	if len(m.Logs) > 0 {
		if err := db.Create(&m.Logs).Error; err != nil {
			return fmt.Errorf("create requisition %s logs: %w", req.ID, err)
		}
	}
	return nil
}

// SaveWithLock updates status and version only if the stored version is
// req.Version-1, then appends the log entries not yet stored
func (r *GormRequisitionRepository) SaveWithLock(ctx context.Context, req *requisition.Requisition) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.RequisitionModel{}).
		Where("id = ? AND version = ?", req.ID, req.Version-1).
		Updates(map[string]any{
			"status":     string(req.Status),
			"version":    req.Version,
			"updated_at": req.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update requisition %s: %w", req.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Requisition %s was modified by another process", req.ID))
	}

	m := models.RequisitionModelFromDomain(req)
	if len(m.Logs) == 0 {
		return nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m.Logs).Error; err != nil {
		return fmt.Errorf("append requisition %s logs: %w", req.ID, err)
	}
	return nil
}

var _ requisition.RequisitionRepository = (*GormRequisitionRepository)(nil)
