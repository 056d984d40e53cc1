// Package cache holds recent analysis results keyed by a request fingerprint.
package cache

import (
	"container/list"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const DefaultCapacity = 100

// Option applies a configuration option to the Cache.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity bounds the number of entries. Values <= 0 keep the default.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

type entry[V any] struct {
	key   string
	value V
}

// Cache is a bounded map that evicts the least recently inserted entry.
// Reads do not refresh an entry's position. Safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is newest
}

func New[V any](opts ...Option) *Cache[V] {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		capacity: o.capacity,
		items:    make(map[string]*list.Element, o.capacity),
		order:    list.New(),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key. Replacing an existing key keeps its insertion slot.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		return
	}
	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Key joins parts with "|". Long free-text parts are replaced by a short hash.
func Key(parts ...string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if len(p) > 64 {
			p = "h:" + Hash(p)
		}
		out[i] = p
	}
	return strings.Join(out, "|")
}

// Hash returns a short stable hex digest of s.
func Hash(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}
