package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"idea-validator-app/internal/config"
	analysisDomain "idea-validator-app/internal/modules/analysis/domain"
	analysisUsecase "idea-validator-app/internal/modules/analysis/usecase"
	historyDomain "idea-validator-app/internal/modules/history/domain"
	historyInfra "idea-validator-app/internal/modules/history/infrastructure"
	historyUsecase "idea-validator-app/internal/modules/history/usecase"
	sharedAI "idea-validator-app/internal/modules/shared/infrastructure/ai"
	sharedCache "idea-validator-app/internal/modules/shared/infrastructure/cache"
	sharedDB "idea-validator-app/internal/modules/shared/infrastructure/database"
)

// ClientContainer CLI用DIコンテナ
type ClientContainer struct {
	logger  *slog.Logger
	closers []io.Closer

	cache          analysisDomain.Cache
	historyStore   historyDomain.HistoryStore
	analyzeUseCase *analysisUsecase.AnalyzeUseCase
	historyUseCase *historyUsecase.HistoryUseCase
	session        *historyUsecase.Session
}

// NewClientContainer 新しいClientContainerを作成
//
// キャッシュは cache.endpoint が設定されていればキャッシュ関数経由、
// なければ kv_store を直接使う。
func NewClientContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ClientContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	container := &ClientContainer{logger: logger}

	aiRepo, err := sharedAI.NewAIRepository(&cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI repository: %w", err)
	}

	if cfg.Cache.Endpoint != "" {
		container.cache = sharedCache.NewRemoteCache(cfg.Cache.Endpoint)
	} else {
		kvStore, closer := newKVStore(&cfg.KVStore, logger)
		if closer != nil {
			container.closers = append(container.closers, closer)
		}
		container.cache = sharedCache.NewKVCache(kvStore)
	}

	store, err := newHistoryStore(&cfg.History, logger)
	if err != nil {
		_ = container.Close()
		return nil, err
	}
	container.historyStore = store
	if closer, ok := store.(io.Closer); ok {
		container.closers = append(container.closers, closer)
	}

	container.analyzeUseCase = analysisUsecase.NewAnalyzeUseCase(aiRepo, container.cache, analysisUsecase.Options{
		TTL:          cfg.Cache.TTL,
		WriteTimeout: cfg.Cache.WriteTimeout,
		Logger:       logger,
	})
	container.historyUseCase = historyUsecase.NewHistoryUseCase(ctx, store, logger)
	container.session = historyUsecase.NewSession(container.analyzeUseCase, container.historyUseCase)

	return container, nil
}

// newHistoryStore 設定のバックエンドから履歴ストアを作成
func newHistoryStore(cfg *config.HistoryConfig, logger *slog.Logger) (historyDomain.HistoryStore, error) {
	switch cfg.Backend {
	case config.HistoryBackendSQLite:
		repo, err := sharedDB.NewBunHistoryRepository(cfg.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history repository: %w", err)
		}
		return repo, nil
	case "", config.HistoryBackendFile:
		store, err := historyInfra.NewFileHistoryStore(cfg.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported history backend: %q", cfg.Backend)
}

// Logger ロガーを取得
func (c *ClientContainer) Logger() *slog.Logger {
	return c.logger
}

// Cache 分析キャッシュを取得
func (c *ClientContainer) Cache() analysisDomain.Cache {
	return c.cache
}

// AnalyzeUseCase 分析ユースケースを取得
func (c *ClientContainer) AnalyzeUseCase() *analysisUsecase.AnalyzeUseCase {
	return c.analyzeUseCase
}

// HistoryUseCase 履歴ユースケースを取得
func (c *ClientContainer) HistoryUseCase() *historyUsecase.HistoryUseCase {
	return c.historyUseCase
}

// Session 対話セッションを取得
func (c *ClientContainer) Session() *historyUsecase.Session {
	return c.session
}

// Close リソースをクローズ
func (c *ClientContainer) Close() error {
	return closeAll(c.closers)
}
