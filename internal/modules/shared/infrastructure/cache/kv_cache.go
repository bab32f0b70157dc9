package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"idea-validator-app/internal/modules/analysis/domain"
	kvdomain "idea-validator-app/internal/modules/cacheproxy/domain"
)

// KVCache KVストアを直接使う分析結果キャッシュ
type KVCache struct {
	store kvdomain.KVStore
	now   func() time.Time
}

// NewKVCache 新しいKVCacheを作成
func NewKVCache(store kvdomain.KVStore) *KVCache {
	return &KVCache{store: store, now: time.Now}
}

// Get キーのエントリを取得
func (c *KVCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return domain.DecodeCacheEnvelope(data)
}

// Set エントリを現在時刻付きで上書き保存
func (c *KVCache) Set(ctx context.Context, key string, result *domain.AnalysisResult) error {
	value, err := json.Marshal(domain.NewCacheEntry(key, result, c.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if _, err := c.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}
