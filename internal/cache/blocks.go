package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// BlockSource 封鎖關係的實際來源 (資料庫)
type BlockSource interface {
	BlockedBy(ctx context.Context, userID uint) ([]uint, error)
	BlockersOf(ctx context.Context, userID uint) ([]uint, error)
}

// BlockSets 在 BlockSource 前加一層讀取快取。
// 快取失效或讀寫失敗時直接讀來源，不影響結果。
type BlockSets struct {
	source BlockSource
	cache  Cache
	ttl    time.Duration
}

func NewBlockSets(source BlockSource, c Cache, ttl time.Duration) *BlockSets {
	return &BlockSets{source: source, cache: c, ttl: ttl}
}

func blockedKey(userID uint) string  { return fmt.Sprintf("blocks:by:%d", userID) }
func blockersKey(userID uint) string { return fmt.Sprintf("blocks:of:%d", userID) }

func (b *BlockSets) BlockedBy(ctx context.Context, userID uint) ([]uint, error) {
	return b.load(ctx, blockedKey(userID), func() ([]uint, error) { return b.source.BlockedBy(ctx, userID) })
}

func (b *BlockSets) BlockersOf(ctx context.Context, userID uint) ([]uint, error) {
	return b.load(ctx, blockersKey(userID), func() ([]uint, error) { return b.source.BlockersOf(ctx, userID) })
}

// Invalidate 封鎖或解除封鎖後更新雙方的版本並清除快取。
// 版本不同的快取項目一律視為失效，避免失效前開始的讀取把舊集合寫回。
func (b *BlockSets) Invalidate(ctx context.Context, blockerID, blockedID uint) error {
	ver := uuid.NewString()
	for _, key := range []string{blockedKey(blockerID), blockersKey(blockedID)} {
		if err := b.cache.Set(ctx, versionKey(key), ver, 0); err != nil {
			return err
		}
	}
	_, err := b.cache.Del(ctx, blockedKey(blockerID), blockersKey(blockedID))
	return err
}

// blockEntry 快取的內容，Version 為寫入時讀到的版本
type blockEntry struct {
	Version string `json:"v"`
	IDs     []uint `json:"ids"`
}

func versionKey(key string) string { return key + ":v" }

func (b *BlockSets) load(ctx context.Context, key string, fetch func() ([]uint, error)) ([]uint, error) {
	// 版本必須在讀來源之前取得
	ver, err := b.cache.Get(ctx, versionKey(key))
	if err != nil && !errors.Is(err, ErrMiss) {
		slog.Warn("block cache read failed", "key", key, "error", err)
		return b.fetch(fetch)
	}

	raw, err := b.cache.Get(ctx, key)
	if err == nil {
		var e blockEntry
		if jerr := json.Unmarshal([]byte(raw), &e); jerr == nil && e.Version == ver {
			return e.IDs, nil
		}
	} else if !errors.Is(err, ErrMiss) {
		slog.Warn("block cache read failed", "key", key, "error", err)
	}

	ids, err := b.fetch(fetch)
	if err != nil {
		return nil, err
	}
	data, _ := json.Marshal(blockEntry{Version: ver, IDs: ids})
	if err := b.cache.Set(ctx, key, string(data), b.ttl); err != nil {
		slog.Warn("block cache write failed", "key", key, "error", err)
	}
	return ids, nil
}

func (b *BlockSets) fetch(fetch func() ([]uint, error)) ([]uint, error) {
	ids, err := fetch()
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}
