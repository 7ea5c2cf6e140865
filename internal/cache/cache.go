package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/redis/go-redis/v9"
)

const (
	KeyPrefix  = "cohorthub:cohort:"
	DefaultTTL = 30 * time.Second
)

// Cohorts is a read-through cache of cohort rows keyed by id.
type Cohorts struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCohorts(rdb *redis.Client, ttl time.Duration) *Cohorts {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cohorts{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return KeyPrefix + id
}

// GetMany returns the cached cohorts and the ids that were not cached.
func (c *Cohorts) GetMany(ctx context.Context, ids []string) (map[string]cohort.Cohort, []string, error) {
	found := make(map[string]cohort.Cohort, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, ids, fmt.Errorf("mget cohorts: %w", err)
	}

	var missing []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}

		var co cohort.Cohort
		if err := json.Unmarshal([]byte(raw), &co); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = co
	}

	return found, missing, nil
}

func (c *Cohorts) SetMany(ctx context.Context, cohorts map[string]cohort.Cohort) error {
	if len(cohorts) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for id, co := range cohorts {
		b, err := json.Marshal(co)
		if err != nil {
			return fmt.Errorf("marshal cohort %s: %w", id, err)
		}
		pipe.Set(ctx, key(id), b, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set cohorts: %w", err)
	}

	return nil
}

// Clear drops every cached cohort.
func (c *Cohorts) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, KeyPrefix+"*", 200).Iterator()

	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("clear cohorts: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cohorts: %w", err)
	}

	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("clear cohorts: %w", err)
		}
	}

	return nil
}
