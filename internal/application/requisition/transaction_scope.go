package requisition

import (
	"context"

	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/requisition"
)

// TransactionScope provides transactional access to the repositories touched
// by a requisition command. Everything written inside Execute is committed
// or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// RequisitionRepo returns the requisition repository scoped to the current transaction
	RequisitionRepo() requisition.RequisitionRepository
	// InventoryRepo returns the inventory repository scoped to the current transaction
	InventoryRepo() inventory.InventoryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when running without a database.
type NoOpTransactionScope struct {
	requisitionRepo requisition.RequisitionRepository
	inventoryRepo   inventory.InventoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
// Nil repositories turn the corresponding writes into no-ops.
func NewNoOpTransactionScope(requisitionRepo requisition.RequisitionRepository, inventoryRepo inventory.InventoryRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		requisitionRepo: requisitionRepo,
		inventoryRepo:   inventoryRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RequisitionRepo returns the requisition repository.
func (s *NoOpTransactionScope) RequisitionRepo() requisition.RequisitionRepository {
	if s.requisitionRepo == nil {
		return discardRequisitions{}
	}
	return s.requisitionRepo
}

// InventoryRepo returns the inventory repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryRepository {
	if s.inventoryRepo == nil {
		return discardInventory{}
	}
	return s.inventoryRepo
}

// discardRequisitions accepts every write and stores nothing
type discardRequisitions struct{}

func (discardRequisitions) FindAll(context.Context) ([]*requisition.Requisition, error) {
	return nil, nil
}

func (discardRequisitions) FindByID(context.Context, string) (*requisition.Requisition, error) {
	return nil, nil
}

func (discardRequisitions) ExistsByID(context.Context, string) (bool, error) { return false, nil }

func (discardRequisitions) Create(context.Context, *requisition.Requisition) error { return nil }

func (discardRequisitions) SaveWithLock(context.Context, *requisition.Requisition) error {
	return nil
}

// discardInventory accepts every write and stores nothing
type discardInventory struct{}

func (discardInventory) LoadAll(context.Context) ([]inventory.Record, error) { return nil, nil }

func (discardInventory) Save(context.Context, inventory.Record) error { return nil }

func (discardInventory) SaveAll(context.Context, []inventory.Record) error { return nil }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
