package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// UploadCache 记录“输入内容哈希 → 对象存储 URL”的映射，
// 同一缓冲在多次执行间只上传一次。
type UploadCache interface {
	Get(ctx context.Context, key string) (url string, ok bool, err error)
	Put(ctx context.Context, key, url string) error
}

// CacheKey derives the content-addressed cache key for a buffer.
func CacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ---------------------------------------------------------------------------
// in-memory backend
// ---------------------------------------------------------------------------

type memoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryCache 创建进程内上传缓存，适合单进程宿主。
func NewMemoryCache() UploadCache {
	return &memoryCache{m: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.m[key]
	return url, ok, nil
}

func (c *memoryCache) Put(_ context.Context, key, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = url
	return nil
}

// ---------------------------------------------------------------------------
// redis backend
// ---------------------------------------------------------------------------

const redisKeyPrefix = "mediaflow:upload:"

type redisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache 创建 Redis 上传缓存，供多实例宿主共享。
// ttl 为 0 时条目不过期（提供方存储 URL 本身有生命周期，建议设置 TTL）。
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) UploadCache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	url, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (c *redisCache) Put(ctx context.Context, key, url string) error {
	return c.client.Set(ctx, redisKeyPrefix+key, url, c.ttl).Err()
}

// ---------------------------------------------------------------------------
// nop backend
// ---------------------------------------------------------------------------

type nopCache struct{}

// NopCache 不缓存任何条目；每次执行都重新上传。
func NopCache() UploadCache { return nopCache{} }

func (nopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (nopCache) Put(context.Context, string, string) error         { return nil }
