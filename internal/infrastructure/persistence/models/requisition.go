package models

import (
	"time"

	"github.com/opsboard/backend/internal/domain/requisition"
)

// RequisitionModel is the persistence model for the Requisition aggregate
type RequisitionModel struct {
	AggregateModel
	RequesterID      string                `gorm:"type:varchar(64);not null"`
	SourceLocationID string                `gorm:"type:varchar(64);not null;index"`
	TargetLocationID string                `gorm:"type:varchar(64);not null;index"`
	ItemID           string                `gorm:"type:varchar(64);not null;index"`
	Quantity         int                   `gorm:"not null"`
	Status           string                `gorm:"type:varchar(20);not null;index"`
	Origin           string                `gorm:"type:varchar(20);not null;default:'LOCAL'"`
	Logs             []RequisitionLogModel `gorm:"foreignKey:RequisitionID;references:ID"`
}

// TableName returns the table name for GORM
func (RequisitionModel) TableName() string {
	return "requisitions"
}

// RequisitionLogModel is one audit log line. Seq is the entry's position in
// the requisition's log.
type RequisitionLogModel struct {
	ID            string    `gorm:"type:varchar(64);primaryKey"`
	RequisitionID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_requisition_log_seq"`
	Seq           int       `gorm:"not null;uniqueIndex:idx_requisition_log_seq"`
	Timestamp     time.Time `gorm:"not null"`
	ActorID       string    `gorm:"type:varchar(64);not null"`
	Action        string    `gorm:"type:varchar(20);not null"`
	Message       string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (RequisitionLogModel) TableName() string {
	return "requisition_logs"
}

// ToDomain converts the model to a domain Requisition. Logs must be loaded
// in Seq order.
func (m *RequisitionModel) ToDomain() *requisition.Requisition {
	r := &requisition.Requisition{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		RequesterID:       m.RequesterID,
		SourceLocationID:  m.SourceLocationID,
		TargetLocationID:  m.TargetLocationID,
		ItemID:            m.ItemID,
		Quantity:          m.Quantity,
		Status:            requisition.Status(m.Status),
		Origin:            requisition.Origin(m.Origin),
		Logs:              make([]requisition.LogEntry, 0, len(m.Logs)),
	}
	for _, l := range m.Logs {
		r.Logs = append(r.Logs, requisition.LogEntry{
			ID:        l.ID,
			Timestamp: l.Timestamp,
			ActorID:   l.ActorID,
			Action:    requisition.LogAction(l.Action),
			Message:   l.Message,
		})
	}
	return r
}

// RequisitionModelFromDomain converts a domain Requisition to a model,
// numbering its log entries
func RequisitionModelFromDomain(r *requisition.Requisition) *RequisitionModel {
	m := &RequisitionModel{
		RequesterID:      r.RequesterID,
		SourceLocationID: r.SourceLocationID,
		TargetLocationID: r.TargetLocationID,
		ItemID:           r.ItemID,
		Quantity:         r.Quantity,
		Status:           string(r.Status),
		Origin:           string(r.Origin),
		Logs:             make([]RequisitionLogModel, 0, len(r.Logs)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i, l := range r.Logs {
		m.Logs = append(m.Logs, RequisitionLogModel{
			ID:            l.ID,
			RequisitionID: r.ID,
			Seq:           i + 1,
			Timestamp:     l.Timestamp,
			ActorID:       l.ActorID,
			Action:        string(l.Action),
			Message:       l.Message,
		})
	}
	return m
}
