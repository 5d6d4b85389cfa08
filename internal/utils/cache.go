package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache 进程内 LRU 缓存，每个条目单独设置过期时间
type TTLCache[V any] struct {
	entries *lru.Cache[string, cacheEntry[V]]
	now     func() time.Time
}

// NewTTLCache 创建容量为 size 的缓存
func NewTTLCache[V any](size int) (*TTLCache[V], error) {
	entries, err := lru.New[string, cacheEntry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache failed: %w", err)
	}
	return &TTLCache[V]{entries: entries, now: time.Now}, nil
}

// Set 写入缓存，ttl 后过期
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.entries.Add(key, cacheEntry[V]{value: value, expiresAt: c.now().Add(ttl)})
}

// Get 读取缓存，过期条目顺手移除
func (c *TTLCache[V]) Get(key string) (V, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *TTLCache[V]) Delete(key string) {
	c.entries.Remove(key)
}

// Len 当前条目数，包含尚未被读到的过期条目
func (c *TTLCache[V]) Len() int {
	return c.entries.Len()
}
