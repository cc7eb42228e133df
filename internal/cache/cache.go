// Package cache holds the logged-in user's record for the session and keeps it in step
// with confirmed, facet-scoped writes.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Houeta/staff-directory/internal/lib/logger/sl"
	"github.com/Houeta/staff-directory/internal/metrics"
	"github.com/Houeta/staff-directory/internal/models"
)

// DefaultKey is the key the cached user is stored under.
const DefaultKey = "user"

// ErrNotFound is returned by a Store when nothing is stored under the key.
var ErrNotFound = errors.New("cached record not found")

// Store persists the cached record between runs.
type Store interface {
	Load(ctx context.Context, key string) (models.Record, error)
	Save(ctx context.Context, key string, rec models.Record) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RecordCacheIface is the cache as seen by the session flows.
type RecordCacheIface interface {
	Get() models.Record
	Merge(ctx context.Context, patch models.Record) (models.Record, error)
	MergeMissing(ctx context.Context, patch models.Record) (models.Record, []string, error)
	Replace(ctx context.Context, rec models.Record) error
	Clear(ctx context.Context) error
	Load(ctx context.Context) error
}

// Cache is the single session-scoped cached user. All mutations are read-modify-write under
// one lock, and the persistent copy is written before the in-memory one is swapped, so a
// failed write leaves both untouched.
type Cache struct {
	mu      sync.Mutex
	current models.Record
	key     string
	store   Store
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New returns an empty cache. A nil store keeps the record in memory only.
func New(log *slog.Logger, store Store, key string, metrics *metrics.Metrics) *Cache {
	if key == "" {
		key = DefaultKey
	}
	return &Cache{
		current: models.Record{},
		key:     key,
		store:   store,
		log:     log,
		metrics: metrics,
	}
}

// Get returns a copy of the cached record.
func (c *Cache) Get() models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current.Clone()
}

// Merge overwrites every key present in patch and leaves the others alone.
// It returns the merged snapshot.
func (c *Cache) Merge(ctx context.Context, patch models.Record) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.Clone()
	for key, value := range patch.Clone() {
		next[key] = value
	}

	if err := c.commit(ctx, next); err != nil {
		return nil, err
	}

	return next.Clone(), nil
}

// MergeMissing copies only the keys of patch whose cached value is currently empty.
// It returns the merged snapshot and the keys that were filled.
func (c *Cache) MergeMissing(ctx context.Context, patch models.Record) (models.Record, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.Clone()
	var filled []string
	for key, value := range patch {
		if !next.IsEmpty(key) || patch.IsEmpty(key) {
			continue
		}
		next[key] = append(value[:0:0], value...)
		filled = append(filled, key)
	}

	if len(filled) == 0 {
		return next, nil, nil
	}

	if err := c.commit(ctx, next); err != nil {
		return nil, nil, err
	}

	return next.Clone(), filled, nil
}

// Replace swaps the whole record. It is used only when a session starts.
func (c *Cache) Replace(ctx context.Context, rec models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commit(ctx, rec.Clone())
}

// Clear drops the cached record and its persistent copy.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		start := time.Now()
		err := c.store.Delete(ctx, c.key)
		c.observe("delete", start)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to delete cached record: %w", err)
		}
	}

	c.current = models.Record{}
	return nil
}

// Load restores the record from the store. A missing record leaves the cache empty.
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	rec, err := c.store.Load(ctx, c.key)
	c.observe("load", start)
	if errors.Is(err, ErrNotFound) {
		c.current = models.Record{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cached record: %w", err)
	}

	c.current = rec
	return nil
}

// Ping checks the backing store when it supports it.
func (c *Cache) Ping(ctx context.Context) error {
	pinger, ok := c.store.(Pinger)
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}

func (c *Cache) commit(ctx context.Context, next models.Record) error {
	if c.store != nil {
		start := time.Now()
		err := c.store.Save(ctx, c.key, next)
		c.observe("save", start)
		if err != nil {
			c.log.ErrorContext(ctx, "Failed to persist cached record", slog.String("key", c.key), sl.Err(err))
			return fmt.Errorf("failed to persist cached record: %w", err)
		}
	}

	c.current = next
	return nil
}

func (c *Cache) observe(operation string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.CacheOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
