package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anggasct/statetable"
	"github.com/anggasct/statetable/pkg/config"
)

// Redis keeps the committed record as a JSON document under a single key.
// D must decode from JSON into the value returned by newData
type Redis[D statetable.Data, E statetable.Event] struct {
	client  redis.UniversalClient
	key     string
	ttl     time.Duration
	newData func() D
	resume  bool
}

// NewRedis creates a Redis-backed data manager storing the record at key
func NewRedis[D statetable.Data, E statetable.Event](
	client redis.UniversalClient, key string, newData func() D,
) *Redis[D, E] {
	return &Redis[D, E]{
		client:  client,
		key:     key,
		newData: newData,
	}
}

// NewRedisFromConfig connects to the Redis described by cfg. The record key
// is the configured prefix joined with name
func NewRedisFromConfig[D statetable.Data, E statetable.Event](
	cfg config.StoreConfig, name string, newData func() D,
) *Redis[D, E] {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedis[D, E](client, Key(cfg.Prefix, name), newData).
		WithTTL(cfg.TTL)
}

// Key joins a prefix and a record name into a Redis key
func Key(prefix, name string) string {
	return prefix + ":record:" + name
}

// WithTTL sets an expiry applied on every write. Zero means no expiry
func (r *Redis[D, E]) WithTTL(ttl time.Duration) *Redis[D, E] {
	r.ttl = ttl
	return r
}

// WithResume keeps an existing record on Initialize instead of resetting
// it, so a restarted control continues from the persisted state
func (r *Redis[D, E]) WithResume(resume bool) *Redis[D, E] {
	r.resume = resume
	return r
}

// Key returns the Redis key holding the record
func (r *Redis[D, E]) Key() string {
	return r.key
}

// Initialize writes a blank record in the initial state
func (r *Redis[D, E]) Initialize(ctx context.Context, initial string) error {
	rec := r.newData()
	rec.SetCurrentState(initial)
	rec.SetPriorState("")
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if r.resume {
		return r.client.SetNX(ctx, r.key, b, r.ttl).Err()
	}
	return r.client.Set(ctx, r.key, b, r.ttl).Err()
}

// Get loads and decodes the committed record
func (r *Redis[D, E]) Get(ctx context.Context, _ E) (D, error) {
	return r.Load(ctx)
}

// Set encodes and writes the working copy
func (r *Redis[D, E]) Set(ctx context.Context, _ E, data D) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return r.client.Set(ctx, r.key, b, r.ttl).Err()
}

// Load reads the committed record
func (r *Redis[D, E]) Load(ctx context.Context) (D, error) {
	var zero D
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, fmt.Errorf("%w: %s", ErrRecordNotFound, r.key)
	}
	if err != nil {
		return zero, err
	}
	rec := r.newData()
	if err := json.Unmarshal(b, rec); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Close closes the underlying client
func (r *Redis[D, E]) Close() error {
	return r.client.Close()
}
