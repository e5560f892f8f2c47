// Package tilecache provides a fixed-size least-recently-used store of
// decoded blocks shared by any number of open image segments. Each segment
// registers a region and receives a Handle; blocks are keyed by handle and
// block origin.
package tilecache

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// ErrInvalidSize is returned when a cache is created with a non-positive capacity
var ErrInvalidSize = errors.New("tilecache: invalid size")

// Handle identifies one region registered with a cache
type Handle struct {
	id uuid.UUID
}

// String returns the handle's identifier
func (h Handle) String() string {
	return h.id.String()
}

// IsZero reports whether the handle was never issued
func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

type region struct {
	rect      image.Rectangle
	blockSize image.Point
}

// aligned reports whether origin is a block origin inside the region
func (r region) aligned(origin image.Point) bool {
	if !origin.In(r.rect) {
		return false
	}
	d := origin.Sub(r.rect.Min)
	return d.X%r.blockSize.X == 0 && d.Y%r.blockSize.Y == 0
}

type key struct {
	handle Handle
	origin image.Point
}

// Cache is a keyed LRU block store safe for concurrent use
type Cache[T any] struct {
	mu      sync.RWMutex
	blocks  *lru.Cache
	regions map[Handle]region
}

// New creates a cache holding at most size blocks across all regions
func New[T any](size int) (*Cache[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	blocks, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache[T]{
		blocks:  blocks,
		regions: make(map[Handle]region),
	}, nil
}

// NewCache registers a region of blocks of blockSize covering rect
func (c *Cache[T]) NewCache(rect image.Rectangle, blockSize image.Point) Handle {
	if blockSize.X <= 0 || blockSize.Y <= 0 {
		return Handle{}
	}
	h := Handle{id: uuid.New()}
	c.mu.Lock()
	c.regions[h] = region{rect: rect, blockSize: blockSize}
	c.mu.Unlock()
	return h
}

// GetTile returns the block at origin, if cached
func (c *Cache[T]) GetTile(h Handle, origin image.Point) (T, bool) {
	var zero T
	c.mu.RLock()
	_, ok := c.regions[h]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	v, ok := c.blocks.Get(key{handle: h, origin: origin})
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// AddTile stores a block at origin. Blocks for unknown handles or origins
// that are not block aligned within the region are dropped.
func (c *Cache[T]) AddTile(h Handle, origin image.Point, v T) {
	c.mu.RLock()
	r, ok := c.regions[h]
	c.mu.RUnlock()
	if !ok || !r.aligned(origin) {
		return
	}
	c.blocks.Add(key{handle: h, origin: origin}, v)
}

// DeleteCache unregisters a region and evicts its blocks
func (c *Cache[T]) DeleteCache(h Handle) {
	c.mu.Lock()
	delete(c.regions, h)
	c.mu.Unlock()

	for _, k := range c.blocks.Keys() {
		if k.(key).handle == h {
			c.blocks.Remove(k)
		}
	}
}

// Len returns the number of cached blocks
func (c *Cache[T]) Len() int {
	return c.blocks.Len()
}
