package requisition

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/inventory"
	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/domain/requisition"
	"github.com/opsboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActorResolver looks up who a user is for authorization purposes
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (identity.Actor, error)
}

// Store is the single source of truth for requisitions and the ledger they
// drive. Every command runs under one mutex: it decides on a copy, commits
// through the TransactionScope and only then updates memory, so no reader
// can see a status change without its ledger movement.
type Store struct {
	mu      sync.Mutex
	graph   *location.Graph
	catalog *catalog.Catalog
	ledger  *inventory.Ledger
	machine *requisition.StateMachine
	actors  ActorResolver
	tx      TransactionScope

	order []string // newest first
	byID  map[string]*requisition.Requisition

	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewStore creates a Store over already-loaded configuration.
func NewStore(
	graph *location.Graph,
	cat *catalog.Catalog,
	ledger *inventory.Ledger,
	machine *requisition.StateMachine,
	actors ActorResolver,
	tx TransactionScope,
) *Store {
	if tx == nil {
		tx = NewNoOpTransactionScope(nil, nil)
	}
	return &Store{
		graph:   graph,
		catalog: cat,
		ledger:  ledger,
		machine: machine,
		actors:  actors,
		tx:      tx,
		byID:    make(map[string]*requisition.Requisition),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Store) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger
func (s *Store) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger.Named("requisition-store")
	}
}

// SetClock overrides the time source used for new requisitions
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Load replaces the in-memory requisitions with persisted ones. It is meant
// to be called once at startup.
func (s *Store) Load(reqs []*requisition.Requisition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]*requisition.Requisition, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	s.order = make([]string, 0, len(sorted))
	s.byID = make(map[string]*requisition.Requisition, len(sorted))
	for _, r := range sorted {
		r.ClearDomainEvents()
		s.order = append(s.order, r.ID)
		s.byID[r.ID] = r
	}
	s.logger.Info("Requisitions loaded", zap.Int("count", len(sorted)))
}

// Create opens a requisition for the requester's location. The source is
// resolved once from the location graph and never recomputed.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*RequisitionResponse, error) {
	actor, err := s.actors.ResolveActor(ctx, req.RequesterID)
	if err != nil {
		return nil, err
	}
	if err := s.machine.Gate().CanCreate(actor); err != nil {
		return nil, err
	}
	if _, err := s.catalog.Require(req.ItemID); err != nil {
		return nil, err
	}
	if !s.graph.Contains(actor.LocationID) {
		return nil, shared.NewDomainError(shared.CodeUnknownLocation,
			fmt.Sprintf("Requester location %q does not exist", actor.LocationID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requisition.New(requisition.NewParams{
		RequesterID:      actor.UserID,
		SourceLocationID: s.graph.ResolveSource(actor.LocationID),
		TargetLocationID: actor.LocationID,
		ItemID:           req.ItemID,
		Quantity:         req.Quantity,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.RequisitionRepo().Create(ctx, r)
	}); err != nil {
		s.logger.Error("Failed to persist requisition", zap.String("requisition_id", r.ID), zap.Error(err))
		return nil, fmt.Errorf("persist requisition: %w", err)
	}

	events := r.GetDomainEvents()
	r.ClearDomainEvents()
	s.order = append([]string{r.ID}, s.order...)
	s.byID[r.ID] = r

	s.logger.Info("Requisition created",
		zap.String("requisition_id", r.ID),
		zap.String("requester_id", r.RequesterID),
		zap.String("item_id", r.ItemID),
		zap.Int("quantity", r.Quantity),
		zap.String("source", r.SourceLocationID),
		zap.String("target", r.TargetLocationID))

	s.publish(ctx, events)
	resp := s.toResponse(r, &actor)
	return &resp, nil
}

// UpdateStatus applies one transition as a single unit of work: the
// requisition, its new log entry and every touched inventory record are
// committed together or not at all.
func (s *Store) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*RequisitionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[req.ID]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Requisition %s not found", req.ID))
	}
	if req.ExpectedStatus != nil && *req.ExpectedStatus != cur.Status {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Requisition %s is %s, expected %s", cur.ID, cur.Status, *req.ExpectedStatus))
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != cur.Version {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Requisition %s is at version %d, expected %d", cur.ID, cur.Version, *req.ExpectedVersion))
	}

	out, err := s.machine.AttemptTransition(cur, req.Status, req.Actor, s.ledger)
	if err != nil {
		s.logger.Debug("Transition rejected",
			zap.String("requisition_id", cur.ID),
			zap.String("from", cur.Status.String()),
			zap.String("to", req.Status.String()),
			zap.String("actor", req.Actor.UserID),
			zap.Error(err))
		return nil, err
	}

	touched := s.ledger.Preview(out.Deltas)
	if err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.RequisitionRepo().SaveWithLock(ctx, out.Requisition); err != nil {
			return err
		}
		for _, rec := range touched {
			if err := repos.InventoryRepo().Save(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		s.logger.Error("Failed to persist transition",
			zap.String("requisition_id", cur.ID),
			zap.String("to", req.Status.String()),
			zap.Error(err))
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	s.ledger.Apply(out.Deltas)
	next := out.Requisition
	events := next.GetDomainEvents()
	next.ClearDomainEvents()
	s.byID[next.ID] = next

	s.logger.Info("Requisition status changed",
		zap.String("requisition_id", next.ID),
		zap.String("from", out.From.String()),
		zap.String("to", out.To.String()),
		zap.String("actor", req.Actor.UserID),
		zap.Int("deltas", len(out.Deltas)))

	s.publish(ctx, events)
	resp := s.toResponse(next, &req.Actor)
	return &resp, nil
}

// BulkUpdateStatus runs one independent transition per id. Failures are
// reported per id and do not undo the ones that succeeded.
func (s *Store) BulkUpdateStatus(ctx context.Context, req BulkStatusRequest) BulkResult {
	result := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	seen := make(map[string]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		_, err := s.UpdateStatus(ctx, UpdateStatusRequest{ID: id, Status: req.Status, Actor: req.Actor})
		if err != nil {
			code := shared.CodeOf(err)
			if code == "" {
				code = "INTERNAL_ERROR"
			}
			result.Failed = append(result.Failed, BulkFailure{ID: id, Code: code, Message: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	s.logger.Info("Bulk transition finished",
		zap.String("status", req.Status.String()),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result
}

// ApprovePending approves every pending requisition the actor can see
func (s *Store) ApprovePending(ctx context.Context, actor identity.Actor) BulkResult {
	pending := s.FindBy(func(r *requisition.Requisition) bool {
		return r.Status == requisition.StatusPending && s.machine.Gate().CanView(r, actor)
	})
	ids := make([]string, len(pending))
	for i, r := range pending {
		ids[i] = r.ID
	}
	return s.BulkUpdateStatus(ctx, BulkStatusRequest{IDs: ids, Status: requisition.StatusApproved, Actor: actor})
}

// FindBy returns copies of every requisition matching pred, newest first
func (s *Store) FindBy(pred func(*requisition.Requisition) bool) []*requisition.Requisition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*requisition.Requisition, 0)
	for _, id := range s.order {
		r := s.byID[id]
		if pred == nil || pred(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Get returns one requisition if the actor may see it
func (s *Store) Get(_ context.Context, id string, actor identity.Actor) (*RequisitionResponse, error) {
	s.mu.Lock()
	r, ok := s.byID[id]
	var snapshot *requisition.Requisition
	if ok {
		snapshot = r.Clone()
	}
	s.mu.Unlock()

	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Requisition %s not found", id))
	}
	if !s.machine.Gate().CanView(snapshot, actor) {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, fmt.Sprintf("Requisition %s is outside your scope", id))
	}
	resp := s.toResponse(snapshot, &actor)
	return &resp, nil
}

// ListFor returns the requisitions visible to actor, newest first
func (s *Store) ListFor(_ context.Context, actor identity.Actor, filter ListFilter) shared.Paginated[RequisitionResponse] {
	gate := s.machine.Gate()
	visible := s.FindBy(func(r *requisition.Requisition) bool {
		if filter.Status != "" && r.Status != filter.Status {
			return false
		}
		if filter.ItemID != "" && r.ItemID != filter.ItemID {
			return false
		}
		return gate.CanView(r, actor)
	})

	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}
	start, end := f.Paginate(len(visible))
	items := make([]RequisitionResponse, 0, end-start)
	for _, r := range visible[start:end] {
		items = append(items, s.toResponse(r, &actor))
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = len(visible)
	}
	return shared.NewPaginated(items, int64(len(visible)), page, size)
}

// ListInventoryFor lists balances at a location, optionally covering its
// whole subtree
func (s *Store) ListInventoryFor(_ context.Context, locationID string, includeDescendants bool) ([]InventoryRecordResponse, error) {
	if !s.graph.Contains(locationID) {
		return nil, shared.NewDomainError(shared.CodeUnknownLocation, fmt.Sprintf("Location %q does not exist", locationID))
	}
	scope := map[string]struct{}{locationID: {}}
	if includeDescendants {
		scope = s.graph.DescendantsOf(locationID)
	}

	s.mu.Lock()
	records := s.ledger.AtLocations(scope)
	s.mu.Unlock()

	out := make([]InventoryRecordResponse, len(records))
	for i, rec := range records {
		out[i] = s.toInventoryResponse(rec)
	}
	return out, nil
}

// QuantityAt reads one ledger balance
func (s *Store) QuantityAt(locationID, itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.QuantityAt(locationID, itemID)
}

// CountByStatus tallies requisitions per status
func (s *Store) CountByStatus() map[requisition.Status]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[requisition.Status]int)
	for _, r := range s.byID {
		out[r.Status]++
	}
	return out
}

// Len returns the number of requisitions held
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Store) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}
