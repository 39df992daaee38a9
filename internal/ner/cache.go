package ner

import (
	"container/list"
	"context"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// cacheCapacity bounds the number of distinct (content, method) entries the
// entity cache retains before evicting the least recently used one.
const cacheCapacity = 512

// cacheKey identifies one cached extraction by content hash and the
// backend method used to produce it, since the same content can be
// extracted differently by different methods.
type cacheKey struct {
	hash   uint64
	method string
}

// cachingBackend wraps a Backend with a bounded LRU keyed on
// (xxh3.Hash(content), method). It is owned by the orchestrator for the
// life of one run and passed by reference, never held as package-level
// state, so concurrent runs never share a cache.
type cachingBackend struct {
	inner  Backend
	method string

	mu       sync.Mutex
	entries  map[cacheKey]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key      cacheKey
	entities []pipeline.NamedEntity
}

// WithCache wraps backend in a caching layer when opts.CacheEnabled is set;
// otherwise backend is returned unchanged.
func WithCache(backend Backend, opts config.NEROptions) Backend {
	if !opts.CacheEnabled {
		return backend
	}
	return &cachingBackend{
		inner:   backend,
		method:  opts.Method,
		entries: make(map[cacheKey]*list.Element),
		order:   list.New(),
	}
}

// Extract returns the cached result for content+method when present,
// otherwise delegates to the wrapped backend and caches the result.
func (c *cachingBackend) Extract(ctx context.Context, content, path string) ([]pipeline.NamedEntity, error) {
	key := cacheKey{hash: xxh3.HashString(content), method: c.method}

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		entities := el.Value.(*cacheEntry).entities
		c.mu.Unlock()
		return entities, nil
	}
	c.mu.Unlock()

	entities, err := c.inner.Extract(ctx, content, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		el := c.order.PushFront(&cacheEntry{key: key, entities: entities})
		c.entries[key] = el
		if c.order.Len() > cacheCapacity {
			oldest := c.order.Back()
			if oldest != nil {
				c.order.Remove(oldest)
				delete(c.entries, oldest.Value.(*cacheEntry).key)
			}
		}
	}
	return entities, nil
}
