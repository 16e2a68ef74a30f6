package requisition

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
)

// MockRequisitionRepository is a mock implementation of requisition.RequisitionRepository
type MockRequisitionRepository struct {
	mock.Mock
}

func (m *MockRequisitionRepository) FindAll(ctx context.Context) ([]*requisition.Requisition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*requisition.Requisition), args.Error(1)
}

func (m *MockRequisitionRepository) FindByID(ctx context.Context, id string) (*requisition.Requisition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requisition.Requisition), args.Error(1)
}

func (m *MockRequisitionRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequisitionRepository) Create(ctx context.Context, r *requisition.Requisition) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequisitionRepository) SaveWithLock(ctx context.Context, r *requisition.Requisition) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockInventoryRepository is a mock implementation of inventory.InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) LoadAll(ctx context.Context) ([]inventory.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Record), args.Error(1)
}

func (m *MockInventoryRepository) Save(ctx context.Context, record inventory.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) SaveAll(ctx context.Context, records []inventory.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// recordingPublisher keeps every published event type
type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}
