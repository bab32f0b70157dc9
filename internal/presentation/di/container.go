package di

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/metrics"
	analysisDomain "idea-validator-app/internal/modules/analysis/domain"
	analysisHandler "idea-validator-app/internal/modules/analysis/presentation/handler"
	analysisUsecase "idea-validator-app/internal/modules/analysis/usecase"
	kvDomain "idea-validator-app/internal/modules/cacheproxy/domain"
	cacheHandler "idea-validator-app/internal/modules/cacheproxy/presentation/handler"
	sharedAI "idea-validator-app/internal/modules/shared/infrastructure/ai"
	sharedCache "idea-validator-app/internal/modules/shared/infrastructure/cache"
	httpHandler "idea-validator-app/internal/presentation/http/handler"
)

// Container サーバー用DIコンテナ
type Container struct {
	logger   *slog.Logger
	registry *prometheus.Registry
	closers  []io.Closer

	// Shared Infrastructure
	aiRepo  analysisDomain.AIRepository
	kvStore kvDomain.KVStore

	// Analysis Module
	analyzeUseCase  *analysisUsecase.AnalyzeUseCase
	analysisHandler *analysisHandler.AnalysisHandler
	shareHandler    *analysisHandler.ShareHandler

	// Cache Proxy Module
	cacheHandler *cacheHandler.CacheHandler

	healthHandler *httpHandler.HealthHandler
}

// NewContainer 新しいContainerを作成
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	container := &Container{logger: logger}

	// Metrics
	container.registry = prometheus.NewRegistry()
	if err := metrics.Register(container.registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	// Shared Infrastructure: AI Repository
	aiRepo, err := sharedAI.NewAIRepository(&cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI repository: %w", err)
	}
	container.aiRepo = aiRepo

	// Shared Infrastructure: KV Store
	kvStore, closer := newKVStore(&cfg.KVStore, logger)
	container.kvStore = kvStore
	if closer != nil {
		container.closers = append(container.closers, closer)
	}

	// Analysis Module: UseCase
	container.analyzeUseCase = analysisUsecase.NewAnalyzeUseCase(aiRepo, sharedCache.NewKVCache(kvStore), analysisUsecase.Options{
		TTL:          cfg.Cache.TTL,
		WriteTimeout: cfg.Cache.WriteTimeout,
		Logger:       logger,
	})

	// Handlers
	container.analysisHandler = analysisHandler.NewAnalysisHandler(container.analyzeUseCase, logger)
	container.shareHandler = analysisHandler.NewShareHandler(cfg.Server.PublicURL, logger)
	container.cacheHandler = cacheHandler.NewCacheHandler(kvStore, logger)
	container.healthHandler = httpHandler.NewHealthHandler(aiRepo.ProviderName(), kvStore.Name())

	return container, nil
}

// newKVStore 設定のバックエンドからKVストアを作成（接続できない場合はNoop）
func newKVStore(cfg *config.KVStoreConfig, logger *slog.Logger) (kvDomain.KVStore, io.Closer) {
	switch cfg.Backend {
	case config.KVBackendUpstash:
		store, err := sharedCache.NewUpstashRepository(&cfg.Upstash)
		if err != nil {
			logger.Warn("Upstash unavailable, caching disabled", "error", err)
			return sharedCache.NewNoopRepository(), nil
		}
		return store, nil
	case config.KVBackendRedis:
		store, err := sharedCache.NewRedisRepository(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			return sharedCache.NewNoopRepository(), nil
		}
		return store, store
	}
	return sharedCache.NewNoopRepository(), nil
}

// Logger ロガーを取得
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Registry Prometheusレジストリを取得
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// AnalyzeUseCase 分析ユースケースを取得
func (c *Container) AnalyzeUseCase() *analysisUsecase.AnalyzeUseCase {
	return c.analyzeUseCase
}

// KVStore キャッシュ関数のKVストアを取得
func (c *Container) KVStore() kvDomain.KVStore {
	return c.kvStore
}

// AnalysisHandler 分析APIハンドラーを取得
func (c *Container) AnalysisHandler() *analysisHandler.AnalysisHandler {
	return c.analysisHandler
}

// ShareHandler 共有ハンドラーを取得
func (c *Container) ShareHandler() *analysisHandler.ShareHandler {
	return c.shareHandler
}

// CacheHandler キャッシュ関数ハンドラーを取得
func (c *Container) CacheHandler() *cacheHandler.CacheHandler {
	return c.cacheHandler
}

// HealthHandler ヘルスチェックハンドラーを取得
func (c *Container) HealthHandler() *httpHandler.HealthHandler {
	return c.healthHandler
}

// Close リソースをクローズ
func (c *Container) Close() error {
	return closeAll(c.closers)
}

func closeAll(closers []io.Closer) error {
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close resource: %w", err)
		}
	}
	return nil
}
