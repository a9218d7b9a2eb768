// Package cache provides an in-memory LRU cache shared by the process memo
// and the tool fetcher.
package cache

import (
	"container/list"
	"sort"
	"sync"
)

// Cache defines the interface for a typed key/value cache
type Cache[V any] interface {
	// Get retrieves a value and marks it as recently used.
	Get(key string) (V, bool)

	// Set stores a value, evicting the least recently used entry when full.
	Set(key string, value V)

	Delete(key string)

	Clear()

	// Len returns the current number of items in the cache.
	Len() int
}

// entry represents a cached item
type entry[V any] struct {
	key     string
	value   V
	element *list.Element // for LRU tracking
}

// LRU is an in-memory cache with least-recently-used eviction.
// A capacity of zero or less means unbounded.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]
	lruList  *list.List
	onEvict  func(key string, value V)
}

// NewLRU creates a cache holding at most capacity items.
//
// Example:
//
//	tools := cache.NewLRU[ports.DownloadedTool](16)
func NewLRU[V any](capacity int) *LRU[V] {
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V]),
		lruList:  list.New(),
	}
}

// OnEvict registers a callback run when capacity pressure drops an entry.
func (c *LRU[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lruList.MoveToFront(e.element)
	return e.value, true
}

func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[key]; ok {
		existing.value = value
		c.lruList.MoveToFront(existing.element)
		return
	}

	if c.capacity > 0 && len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry[V]{key: key, value: value}
	e.element = c.lruList.PushFront(e)
	c.items[key] = e
}

func (c *LRU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.deleteEntry(e)
	}
}

func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
	c.lruList.Init()
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[V]) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys in sorted order.
func (c *LRU[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// evictLRU removes the least recently used item.
// Must be called with c.mu held.
func (c *LRU[V]) evictLRU() {
	element := c.lruList.Back()
	if element == nil {
		return
	}
	e := element.Value.(*entry[V])
	c.deleteEntry(e)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

// deleteEntry must be called with c.mu held.
func (c *LRU[V]) deleteEntry(e *entry[V]) {
	delete(c.items, e.key)
	c.lruList.Remove(e.element)
}
