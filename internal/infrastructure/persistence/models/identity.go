package models

import (
	"time"

	"github.com/opsboard/backend/internal/domain/identity"
)

// UserModel is a user who can sign in
type UserModel struct {
	ID           string `gorm:"type:varchar(64);primaryKey"`
	Username     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName  string `gorm:"type:varchar(200)"`
	Role         string `gorm:"type:varchar(32);not null"`
	LocationID   string `gorm:"type:varchar(64);not null;index"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Active       bool   `gorm:"not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		Role:         identity.Role(m.Role),
		LocationID:   m.LocationID,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		LastLoginAt:  m.LastLoginAt,
	}
}

// UserModelFromDomain converts a domain User to a model
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		Role:         string(u.Role),
		LocationID:   u.LocationID,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		LastLoginAt:  u.LastLoginAt,
	}
}
