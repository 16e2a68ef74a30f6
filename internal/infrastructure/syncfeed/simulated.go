// Package syncfeed provides the external requisition sources the sync
// coordinator pulls from.
package syncfeed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	appreq "github.com/opsboard/backend/internal/application/requisition"
	"github.com/opsboard/backend/internal/domain/requisition"
)

const (
	defaultMaxRecords    = 500
	simulatedRequesterID = "ext-field-team"
	maxSimulatedQuantity = 10
)

// SimulatedOptions tunes the simulated feed
type SimulatedOptions struct {
	// Probability that a fetch observes one new field request
	Probability float64
	// Seed for the random source; 0 seeds from the clock
	Seed int64
	// MaxRecords bounds the history returned by Fetch
	MaxRecords int
	Now        func() time.Time
}

// SimulatedFeed stands in for field teams filing requests from another
// system. Each fetch may observe one new request; every fetch returns the
// whole retained history so repeated merges are no-ops.
type SimulatedFeed struct {
	mu        sync.Mutex
	rng       *rand.Rand
	locations []string
	items     []string
	opts      SimulatedOptions
	history   []appreq.ExternalRequisition
}

// NewSimulatedFeed generates requests for the given target locations and
// items
func NewSimulatedFeed(locations, items []string, opts SimulatedOptions) *SimulatedFeed {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = defaultMaxRecords
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SimulatedFeed{
		rng:       rand.New(rand.NewSource(opts.Seed)),
		locations: append([]string(nil), locations...),
		items:     append([]string(nil), items...),
		opts:      opts,
	}
}

// Name implements Feed
func (f *SimulatedFeed) Name() string { return "simulated" }

// Fetch implements Feed
func (f *SimulatedFeed) Fetch(ctx context.Context) ([]appreq.ExternalRequisition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.locations) > 0 && len(f.items) > 0 && f.rng.Float64() < f.opts.Probability {
		f.history = append(f.history, f.generate())
		if over := len(f.history) - f.opts.MaxRecords; over > 0 {
			f.history = append([]appreq.ExternalRequisition(nil), f.history[over:]...)
		}
	}
	return append([]appreq.ExternalRequisition(nil), f.history...), nil
}

func (f *SimulatedFeed) generate() appreq.ExternalRequisition {
	id, err := uuid.NewRandomFromReader(f.rng)
	if err != nil {
		id = uuid.New()
	}
	return appreq.ExternalRequisition{
		ID:               "ext-" + id.String(),
		RequesterID:      simulatedRequesterID,
		TargetLocationID: f.locations[f.rng.Intn(len(f.locations))],
		ItemID:           f.items[f.rng.Intn(len(f.items))],
		Quantity:         1 + f.rng.Intn(maxSimulatedQuantity),
		Status:           requisition.StatusPending.String(),
		CreatedAt:        f.opts.Now().UTC(),
	}
}

// NoFeed never returns anything. It backs sync.feed = "none".
type NoFeed struct{}

// Name implements Feed
func (NoFeed) Name() string { return "none" }

// Fetch implements Feed
func (NoFeed) Fetch(context.Context) ([]appreq.ExternalRequisition, error) { return nil, nil }
