package syncfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	appreq "github.com/opsboard/backend/internal/application/requisition"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HashClient is the part of a Redis client the feed uses
type HashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisFeed reads external requisitions from a Redis hash of id -> JSON.
// Reading leaves the hash untouched; the producer owns its lifecycle.
type RedisFeed struct {
	client HashClient
	key    string
	logger *zap.Logger
}

// NewRedisFeed reads the hash at key
func NewRedisFeed(client HashClient, key string, logger *zap.Logger) *RedisFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisFeed{client: client, key: key, logger: logger.Named("redis-feed")}
}

// Name implements Feed
func (f *RedisFeed) Name() string { return "redis" }

// Fetch returns every parseable record ordered by creation time then id.
// Malformed entries are logged and left out.
func (f *RedisFeed) Fetch(ctx context.Context) ([]appreq.ExternalRequisition, error) {
	raw, err := f.client.HGetAll(ctx, f.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read hash %s: %w", f.key, err)
	}

	out := make([]appreq.ExternalRequisition, 0, len(raw))
	for field, value := range raw {
		var ext appreq.ExternalRequisition
		if err := json.Unmarshal([]byte(value), &ext); err != nil {
			f.logger.Warn("Ignoring malformed external record", zap.String("field", field), zap.Error(err))
			continue
		}
		if ext.ID == "" {
			ext.ID = field
		}
		out = append(out, ext)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Put writes records into the hash, keyed by id
func (f *RedisFeed) Put(ctx context.Context, records ...appreq.ExternalRequisition) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, 2*len(records))
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal external record %s: %w", r.ID, err)
		}
		values = append(values, r.ID, string(data))
	}
	if err := f.client.HSet(ctx, f.key, values...).Err(); err != nil {
		return fmt.Errorf("write hash %s: %w", f.key, err)
	}
	return nil
}
