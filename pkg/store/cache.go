package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Promptonauts/embate/pkg/models"
)

// CachedStore is a write-through LRU cache in front of a slower backend.
// Absent ids are not cached.
type CachedStore struct {
	next  Store
	cache *lru.Cache[string, *models.EmbateRecord]
}

func NewCachedStore(next Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, *models.EmbateRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &CachedStore{next: next, cache: cache}, nil
}

func (c *CachedStore) Save(ctx context.Context, rec *models.EmbateRecord) error {
	if err := c.next.Save(ctx, rec); err != nil {
		c.cache.Remove(rec.ID)
		return err
	}
	c.cache.Add(rec.ID, rec.Clone())
	return nil
}

func (c *CachedStore) Get(ctx context.Context, id string) (*models.EmbateRecord, error) {
	if rec, ok := c.cache.Get(id); ok {
		return rec.Clone(), nil
	}
	rec, err := c.next.Get(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}
	c.cache.Add(id, rec.Clone())
	return rec, nil
}

func (c *CachedStore) List(ctx context.Context) ([]*models.EmbateRecord, error) {
	return c.next.List(ctx)
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	c.cache.Remove(id)
	return c.next.Delete(ctx, id)
}

func (c *CachedStore) Close() error {
	c.cache.Purge()
	return c.next.Close()
}

// Len reports how many records are cached.
func (c *CachedStore) Len() int {
	return c.cache.Len()
}
