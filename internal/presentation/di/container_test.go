package di

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"idea-validator-app/internal/config"
	sharedCache "idea-validator-app/internal/modules/shared/infrastructure/cache"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AI.Gemini.APIKey = "test-key"
	cfg.KVStore.Backend = config.KVBackendNone
	cfg.Cache.Endpoint = ""
	cfg.History.Dir = t.TempDir()
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(cfg *config.Config)
		wantKVStore string
		wantErr     bool
	}{
		{
			name:        "正常系: デフォルト設定",
			modify:      func(cfg *config.Config) {},
			wantKVStore: config.KVBackendNone,
		},
		{
			name: "正常系: Upstash",
			modify: func(cfg *config.Config) {
				cfg.KVStore.Backend = config.KVBackendUpstash
				cfg.KVStore.Upstash = config.UpstashConfig{URL: "https://example.upstash.io", Token: "t"}
			},
			wantKVStore: config.KVBackendUpstash,
		},
		{
			name: "異常系: Upstash URL未設定はNoopにフォールバック",
			modify: func(cfg *config.Config) {
				cfg.KVStore.Backend = config.KVBackendUpstash
				cfg.KVStore.Upstash = config.UpstashConfig{}
			},
			wantKVStore: config.KVBackendNone,
		},
		{
			name: "異常系: Redis接続不可はNoopにフォールバック",
			modify: func(cfg *config.Config) {
				cfg.KVStore.Backend = config.KVBackendRedis
				cfg.KVStore.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}
			},
			wantKVStore: config.KVBackendNone,
		},
		{
			name: "異常系: 未知のプロバイダー",
			modify: func(cfg *config.Config) {
				cfg.AI.Provider = "mistral"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			container, err := NewContainer(cfg, discardLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewContainer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer func() {
				if err := container.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			if container.KVStore().Name() != tt.wantKVStore {
				t.Errorf("KVStore().Name() = %s, want %s", container.KVStore().Name(), tt.wantKVStore)
			}
			if container.AnalyzeUseCase() == nil {
				t.Error("AnalyzeUseCase() returned nil")
			}
			if container.AnalysisHandler() == nil || container.ShareHandler() == nil ||
				container.CacheHandler() == nil || container.HealthHandler() == nil {
				t.Error("handlers should be initialized")
			}
			if container.Registry() == nil {
				t.Error("Registry() returned nil")
			}
		})
	}
}

func TestNewClientContainer(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(cfg *config.Config)
		wantRemote bool
		wantErr    bool
	}{
		{
			name:   "正常系: ファイル履歴とKVキャッシュ",
			modify: func(cfg *config.Config) {},
		},
		{
			name: "正常系: SQLite履歴",
			modify: func(cfg *config.Config) {
				cfg.History.Backend = config.HistoryBackendSQLite
			},
		},
		{
			name: "正常系: キャッシュ関数経由",
			modify: func(cfg *config.Config) {
				cfg.Cache.Endpoint = "http://localhost:8080/api/v1/cache"
			},
			wantRemote: true,
		},
		{
			name: "異常系: 未知の履歴バックエンド",
			modify: func(cfg *config.Config) {
				cfg.History.Backend = "s3"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			container, err := NewClientContainer(context.Background(), cfg, discardLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClientContainer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer func() { _ = container.Close() }()

			_, isRemote := container.Cache().(*sharedCache.RemoteCache)
			if isRemote != tt.wantRemote {
				t.Errorf("Cache() is RemoteCache = %v, want %v", isRemote, tt.wantRemote)
			}
			if container.Session() == nil || container.HistoryUseCase() == nil || container.AnalyzeUseCase() == nil {
				t.Error("client components should be initialized")
			}
			if !container.HistoryUseCase().AutoSave() {
				t.Error("auto-save should default to true on an empty store")
			}
		})
	}
}
