package cache

import (
	"context"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/modules/cacheproxy/domain"
)

// NoopRepository 何も保存しないKVストア（バックエンド未設定・接続不可時）
type NoopRepository struct{}

// NewNoopRepository 新しいNoopRepositoryを作成
func NewNoopRepository() *NoopRepository {
	return &NoopRepository{}
}

// Get 常に {"result":null} を返す
func (NoopRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return domain.NullEnvelope(), nil
}

// Set 値を破棄して {"result":"OK"} を返す
func (NoopRepository) Set(ctx context.Context, key string, value []byte) ([]byte, error) {
	return domain.OKEnvelope(), nil
}

// Name バックエンド名を返す
func (NoopRepository) Name() string {
	return config.KVBackendNone
}
