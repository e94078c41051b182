package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sessionstate/internal/structures"
)

func cacheConfig(enabled bool, size int, ttl int) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{
			Enabled: enabled,
			Size:    size,
			TTL:     ttl,
		},
	}
}

type mapCache struct {
	data map[string][]byte
}

func (c *mapCache) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Set(key string, value []byte) {
	c.data[key] = value
}

func TestCacheProvider_DisabledReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false, 10, 5), &testLogger{})
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_ZeroSizeReturnsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 0, 5), &testLogger{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheProvider_DefaultTTL(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 0), &testLogger{})
	provider, ok := c.(*CacheProvider)
	assert.True(t, ok)
	assert.Equal(t, defaultCacheTTL, provider.ttl)
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 5), &testLogger{})

	c.Set("state:7", []byte("value1"))
	val, ok := c.Get("state:7")
	assert.True(t, ok)
	assert.Equal(t, []byte("value1"), val)

	val, ok = c.Get("state:8")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_Overwrite(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 5), &testLogger{})

	c.Set("key1", []byte("v1"))
	c.Set("key1", []byte("v2"))

	val, ok := c.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), val)
}

func TestNoopCache_AlwaysMiss(t *testing.T) {
	c := &noopCache{}
	c.Set("key1", []byte("value1"))

	val, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheProvider_TTLExpiry(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1, 1), &testLogger{})

	c.Set("key1", []byte("value1"))
	_, ok := c.Get("key1")
	assert.True(t, ok)

	time.Sleep(2100 * time.Millisecond)

	_, ok = c.Get("key1")
	assert.False(t, ok)
}

func TestMetricsCacheProvider_CountsHitsAndMisses(t *testing.T) {
	inner := &mapCache{data: map[string][]byte{"a": []byte("1")}}
	metrics := &testMetrics{}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), val)
	cache.Get("b")
	cache.Get("a")
	cache.Get("c")

	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}

func TestMetricsCacheProvider_SetDelegates(t *testing.T) {
	inner := &mapCache{data: map[string][]byte{}}
	cache := &MetricsCacheProvider{inner: inner, metrics: &testMetrics{}}

	cache.Set("key2", []byte("val2"))

	val, ok := inner.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, []byte("val2"), val)
}

func TestNewInstrumentedCacheProvider(t *testing.T) {
	metrics := &testMetrics{}

	disabled := NewInstrumentedCacheProvider(cacheConfig(false, 1, 5), &testLogger{}, metrics)
	assert.IsType(t, &noopCache{}, disabled)
	disabled.Get("x")
	assert.Equal(t, 0, metrics.misses)

	enabled := NewInstrumentedCacheProvider(cacheConfig(true, 1, 5), &testLogger{}, metrics)
	assert.IsType(t, &MetricsCacheProvider{}, enabled)
	enabled.Get("x")
	assert.Equal(t, 1, metrics.misses)
}
