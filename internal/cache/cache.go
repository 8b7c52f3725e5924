// Package cache 定義鍵值快取介面與 Redis 實作，封鎖名單經由它做讀取快取。
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache 最小的鍵值快取介面，實作需可併發使用
type Cache interface {
	// Get 取得 key 的值；不存在時回傳 ErrMiss
	Get(ctx context.Context, key string) (string, error)
	// Set ttl <= 0 表示不過期
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Close() error
}

var ErrMiss = errors.New("cache: miss")
