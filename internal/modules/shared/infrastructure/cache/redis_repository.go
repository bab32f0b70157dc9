package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/modules/cacheproxy/domain"
)

// RedisRepository Redis実装のKVストア
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository 新しいRedisRepositoryを作成
func NewRedisRepository(cfg *config.RedisConfig) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRepository{client: client}, nil
}

// Set キーと値を設定（有効期限なし）
func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) ([]byte, error) {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to set cache: %w", err)
	}
	return domain.OKEnvelope(), nil
}

// Get キーから値を取得
func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.NullEnvelope(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return domain.StringEnvelope(val)
}

// Name バックエンド名を返す
func (r *RedisRepository) Name() string {
	return config.KVBackendRedis
}

// Close Redis接続を閉じる
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
