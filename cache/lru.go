// SPDX-License-Identifier: Unlicense OR MIT

// Package cache implements the arena+LRU pattern used by the rendering
// pipeline's caches (per-box layout, glyph bitmaps, shaping results): a
// generic approximate-LRU keyed store with a soft capacity bound,
// generalizing the doubly-linked-list LRU in gio's text/lru.go so the
// glyph cache, shaping cache, and layout cache don't each reimplement
// it. Blurred shadow coverage is not cached.
//
// Entries pinned with Pin are exempt from eviction until Unpin, so a
// frame in progress can hold references to cache entries it already
// looked up without them being evicted mid-frame by later lookups in the
// same frame (§4.2 Eviction: "Entries in active use by the current frame
// are pinned until render_frame returns").
package cache

// Sizer reports the approximate byte cost of a value, for byte-capacity
// caches (glyphs). Caches that bound by entry count instead ignore
// this and pass a Sizer that always returns 1.
type Sizer[V any] func(V) int

type entry[K comparable, V any] struct {
	next, prev *entry[K, V]
	key        K
	val        V
	size       int
	pins       int
}

// LRU is an approximate-LRU cache with a soft capacity bound measured in
// the units Sizer returns. It is not safe for concurrent use; callers
// that share an LRU across goroutines (as the glyph and shaping caches
// are shared across renderers, §5) must guard it with a mutex.
type LRU[K comparable, V any] struct {
	m          map[K]*entry[K, V]
	head, tail *entry[K, V]
	size       int
	cap        int
	sizer      Sizer[V]
}

// New creates an LRU with the given soft capacity and size function.
func New[K comparable, V any](capacity int, sizer Sizer[V]) *LRU[K, V] {
	return &LRU[K, V]{cap: capacity, sizer: sizer}
}

func (c *LRU[K, V]) init() {
	if c.m != nil {
		return
	}
	c.m = make(map[K]*entry[K, V])
	c.head = new(entry[K, V])
	c.tail = new(entry[K, V])
	c.head.prev = c.tail
	c.tail.next = c.head
}

// Get looks up key, promoting it to most-recently-used on hit.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if c.m == nil {
		var zero V
		return zero, false
	}
	if e, ok := c.m[key]; ok {
		c.remove(e)
		c.insert(e)
		return e.val, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces key's value and evicts unpinned entries from
// the tail until the cache is back under its capacity (or only pinned
// entries remain).
func (c *LRU[K, V]) Put(key K, val V) {
	c.init()
	size := 1
	if c.sizer != nil {
		size = c.sizer(val)
	}
	if old, ok := c.m[key]; ok {
		c.size -= old.size
		c.remove(old)
	}
	e := &entry[K, V]{key: key, val: val, size: size}
	c.m[key] = e
	c.insert(e)
	c.size += size
	c.evict()
}

// Pin marks key as in-use, exempting it from eviction. Pin is a no-op if
// key is not present.
func (c *LRU[K, V]) Pin(key K) {
	if e, ok := c.m[key]; ok {
		e.pins++
	}
}

// Unpin releases a Pin. Once an entry's pin count reaches zero it is
// eligible for eviction again on the next Put.
func (c *LRU[K, V]) Unpin(key K) {
	if e, ok := c.m[key]; ok && e.pins > 0 {
		e.pins--
	}
}

// UnpinAll releases every outstanding pin, called once a frame finishes
// rendering.
func (c *LRU[K, V]) UnpinAll() {
	for _, e := range c.m {
		e.pins = 0
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return len(c.m)
}

func (c *LRU[K, V]) evict() {
	if c.cap <= 0 {
		return
	}
	node := c.tail.next
	for c.size > c.cap && node != c.head {
		next := node.next
		if node.pins == 0 {
			c.remove(node)
			delete(c.m, node.key)
			c.size -= node.size
		}
		node = next
	}
}

func (c *LRU[K, V]) remove(e *entry[K, V]) {
	e.next.prev = e.prev
	e.prev.next = e.next
}

func (c *LRU[K, V]) insert(e *entry[K, V]) {
	e.next = c.head
	e.prev = c.head.prev
	e.prev.next = e
	e.next.prev = e
}
