package syncfeed

import (
	"fmt"

	appsync "github.com/opsboard/backend/internal/application/sync"
	"github.com/opsboard/backend/internal/domain/catalog"
	"github.com/opsboard/backend/internal/domain/location"
	"github.com/opsboard/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the feed named by cfg.Feed. The simulated feed targets every
// field location; redis needs a client.
func New(cfg config.SyncConfig, graph *location.Graph, cat *catalog.Catalog, client HashClient, logger *zap.Logger) (appsync.Feed, error) {
	switch cfg.Feed {
	case "", "simulated":
		var fields []string
		for _, loc := range graph.All() {
			if loc.Type == location.LocationTypeField {
				fields = append(fields, loc.ID)
			}
		}
		return NewSimulatedFeed(fields, cat.IDs(), SimulatedOptions{
			Probability: cfg.SimulatedProbability,
			Seed:        cfg.SimulatedSeed,
		}), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("sync feed %q requires redis to be enabled", cfg.Feed)
		}
		return NewRedisFeed(client, cfg.RedisKey, logger), nil
	case "none":
		return NoFeed{}, nil
	default:
		return nil, fmt.Errorf("unknown sync feed %q", cfg.Feed)
	}
}
