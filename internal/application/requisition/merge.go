package requisition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MergeExternal inserts external requisitions whose ids are not yet known.
// Existing entries are never touched, so merging the same batch twice is a
// no-op. Invalid records are skipped. New records are persisted in one
// transaction and then prepended in feed order; a persistence failure leaves
// the store unchanged.
func (s *Store) MergeExternal(ctx context.Context, batch []ExternalRequisition) (*MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &MergeResult{Inserted: []RequisitionResponse{}, Skipped: []SkippedRecord{}}
	fresh := make([]*requisition.Requisition, 0, len(batch))
	inBatch := make(map[string]struct{}, len(batch))
	now := s.now()

	for _, ext := range batch {
		if _, known := s.byID[ext.ID]; known {
			result.Known++
			continue
		}
		if _, dup := inBatch[ext.ID]; dup {
			result.Known++
			continue
		}
		r, err := s.importExternal(ext, now)
		if err != nil {
			s.logger.Warn("Skipping external requisition", zap.String("external_id", ext.ID), zap.Error(err))
			result.Skipped = append(result.Skipped, SkippedRecord{ID: ext.ID, Reason: err.Error()})
			continue
		}
		inBatch[ext.ID] = struct{}{}
		fresh = append(fresh, r)
	}

	if len(fresh) == 0 {
		return result, nil
	}

	if err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, r := range fresh {
			if err := repos.RequisitionRepo().Create(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		s.logger.Error("Failed to persist merged requisitions", zap.Int("count", len(fresh)), zap.Error(err))
		return nil, fmt.Errorf("persist merged requisitions: %w", err)
	}

	ids := make([]string, 0, len(fresh)+len(s.order))
	events := make([]shared.DomainEvent, 0, len(fresh))
	for _, r := range fresh {
		ids = append(ids, r.ID)
		events = append(events, r.GetDomainEvents()...)
		r.ClearDomainEvents()
		s.byID[r.ID] = r
		result.Inserted = append(result.Inserted, s.toResponse(r, nil))
	}
	s.order = append(ids, s.order...)

	s.logger.Info("Merged external requisitions",
		zap.Int("inserted", len(fresh)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("known", result.Known))

	s.publish(ctx, events)
	return result, nil
}

func (s *Store) importExternal(ext ExternalRequisition, now time.Time) (*requisition.Requisition, error) {
	if strings.TrimSpace(ext.ID) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "External requisition has no id")
	}
	if !s.catalog.Contains(ext.ItemID) {
		return nil, shared.NewDomainError(shared.CodeUnknownItem, fmt.Sprintf("Item %q does not exist", ext.ItemID))
	}
	if !s.graph.Contains(ext.TargetLocationID) {
		return nil, shared.NewDomainError(shared.CodeUnknownLocation, fmt.Sprintf("Location %q does not exist", ext.TargetLocationID))
	}
	status := requisition.Status(strings.ToUpper(strings.TrimSpace(ext.Status)))
	if status == "" {
		status = requisition.StatusPending
	}
	return requisition.Import(ext.ID, requisition.NewParams{
		RequesterID:      ext.RequesterID,
		SourceLocationID: s.graph.ResolveSource(ext.TargetLocationID),
		TargetLocationID: ext.TargetLocationID,
		ItemID:           ext.ItemID,
		Quantity:         ext.Quantity,
	}, status, ext.CreatedAt, now)
}
