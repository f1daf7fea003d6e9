package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

const (
	ProductKeyPrefix     = "product:"
	ProductListKeyPrefix = "products:list:"
)

type Item struct {
	Value      interface{}
	Expiration int64
}

// Cache is an in-memory TTL store. A janitor goroutine evicts expired items
// until Close is called.
type Cache struct {
	items map[string]Item
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a cache whose entries live for defaultTTL unless Set says otherwise.
func New(defaultTTL time.Duration) *Cache {
	return newCache(defaultTTL, defaultTTL)
}

func newCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]Item),
		ttl:   defaultTTL,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	go c.cleanupExpired(cleanupInterval)
	return c
}

func ProductKey(id string) string {
	return ProductKeyPrefix + id
}

func ProductListKey(canonical string) string {
	return ProductListKeyPrefix + canonical
}

func (c *Cache) Set(key string, value interface{}, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}

	c.items[key] = Item{
		Value:      value,
		Expiration: c.now().Add(duration).UnixNano(),
	}
}

func (c *Cache) GetValue(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}
	if c.now().UnixNano() > item.Expiration {
		return nil, false
	}
	return item.Value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteByPrefix drops every key starting with prefix.
func (c *Cache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// InvalidateProduct forgets the product and every cached listing.
func (c *Cache) InvalidateProduct(id string) {
	c.Delete(ProductKey(id))
	c.DeleteByPrefix(ProductListKeyPrefix)
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for key, item := range c.items {
		if now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Marshal stores value as JSON so later readers get an independent copy.
func (c *Cache) Marshal(key string, value interface{}, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, data, ttl...)
	return nil
}

// Raw returns the JSON bytes stored with Marshal.
func (c *Cache) Raw(key string) ([]byte, bool) {
	data, found := c.GetValue(key)
	if !found {
		return nil, false
	}
	bytes, ok := data.([]byte)
	return bytes, ok
}
