package models

import (
	"time"

	"github.com/opsboard/backend/internal/domain/location"
)

// LocationModel is one node of the location hierarchy
type LocationModel struct {
	ID        string  `gorm:"type:varchar(64);primaryKey"`
	Name      string  `gorm:"type:varchar(200);not null"`
	Type      string  `gorm:"type:varchar(20);not null"`
	ParentID  *string `gorm:"type:varchar(64);index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the model to a domain Location
func (m *LocationModel) ToDomain() location.Location {
	loc := location.Location{ID: m.ID, Name: m.Name, Type: location.LocationType(m.Type)}
	if m.ParentID != nil {
		loc.ParentID = *m.ParentID
	}
	return loc
}

// LocationModelFromDomain converts a domain Location to a model
func LocationModelFromDomain(l location.Location) *LocationModel {
	m := &LocationModel{ID: l.ID, Name: l.Name, Type: string(l.Type)}
	if l.ParentID != "" {
		parent := l.ParentID
		m.ParentID = &parent
	}
	return m
}
