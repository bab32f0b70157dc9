package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"idea-validator-app/internal/metrics"
	"idea-validator-app/internal/modules/analysis/domain"
)

// Clock 現在時刻の取得（テスト用のSeam）
type Clock interface {
	Now() time.Time
}

// SystemClock time.Now を使う既定のClock
type SystemClock struct{}

// Now 現在時刻を返す
func (SystemClock) Now() time.Time { return time.Now() }

// AnalyzeOutcome 分析結果とキャッシュヒット有無
type AnalyzeOutcome struct {
	Result *domain.AnalysisResult
	Cached bool
}

// Options AnalyzeUseCaseの任意設定
type Options struct {
	TTL          time.Duration
	WriteTimeout time.Duration
	Clock        Clock
	Logger       *slog.Logger
}

// AnalyzeUseCase キャッシュ優先のアイデア分析ユースケース
type AnalyzeUseCase struct {
	aiRepo       domain.AIRepository
	cache        domain.Cache
	ttl          time.Duration
	writeTimeout time.Duration
	clock        Clock
	logger       *slog.Logger
}

// NewAnalyzeUseCase 新しいAnalyzeUseCaseを作成
func NewAnalyzeUseCase(aiRepo domain.AIRepository, cache domain.Cache, opts Options) *AnalyzeUseCase {
	if opts.TTL <= 0 {
		opts.TTL = domain.DefaultCacheTTL
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &AnalyzeUseCase{
		aiRepo:       aiRepo,
		cache:        cache,
		ttl:          opts.TTL,
		writeTimeout: opts.WriteTimeout,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
}

// Analyze アイデアを分析（新鮮なキャッシュがあればプロバイダーを呼ばない）
//
// キャッシュの読み書き失敗は記録のみ行い、処理は継続する。
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, idea string) (*AnalyzeOutcome, error) {
	// 入力検証
	if domain.IsBlank(idea) {
		return nil, domain.ErrEmptyIdea
	}

	// キャッシュキーは入力そのまま（正規化しない）
	if cached := uc.lookup(ctx, idea); cached != nil {
		metrics.ObserveAnalysis(metrics.CacheHit)
		return &AnalyzeOutcome{Result: cached, Cached: true}, nil
	}

	start := time.Now()
	result, err := uc.aiRepo.Analyze(ctx, idea)
	if err != nil {
		metrics.ObserveProviderCall(uc.aiRepo.ProviderName(), time.Since(start), metrics.OutcomeError)
		if !errors.Is(err, domain.ErrMissingAPIKey) {
			uc.logger.Error("AI analysis failed",
				"provider", uc.aiRepo.ProviderName(),
				"error", err,
			)
		}
		return nil, fmt.Errorf("failed to analyze idea: %w", err)
	}
	metrics.ObserveProviderCall(uc.aiRepo.ProviderName(), time.Since(start), metrics.OutcomeSuccess)
	metrics.ObserveAnalysis(metrics.CacheMiss)

	uc.store(ctx, idea, result)

	return &AnalyzeOutcome{Result: result, Cached: false}, nil
}

// GetProviderName プロバイダー名を取得
func (uc *AnalyzeUseCase) GetProviderName() string {
	return uc.aiRepo.ProviderName()
}

// lookup 新鮮なキャッシュを探す（ミス・期限切れ・エラーは nil）
func (uc *AnalyzeUseCase) lookup(ctx context.Context, idea string) *domain.AnalysisResult {
	if uc.cache == nil {
		return nil
	}

	entry, err := uc.cache.Get(ctx, idea)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			metrics.ObserveCacheError(metrics.CacheOpGet)
			uc.logger.Warn("Cache read failed, falling back to provider", "error", err)
		}
		return nil
	}

	if !entry.IsFresh(uc.clock.Now(), uc.ttl) {
		uc.logger.Debug("Cache entry expired", "stored_at", entry.StoredAt)
		return nil
	}

	result := entry.Response
	return &result
}

// store キャッシュへ書き込む
//
// 呼び出し元のキャンセルから切り離し、書き込みタイムアウトで上限を設ける。
// 失敗はリトライせずログとメトリクスにのみ残す。
func (uc *AnalyzeUseCase) store(ctx context.Context, idea string, result *domain.AnalysisResult) {
	if uc.cache == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.writeTimeout)
	defer cancel()

	if err := uc.cache.Set(writeCtx, idea, result); err != nil {
		metrics.ObserveCacheError(metrics.CacheOpSet)
		uc.logger.Warn("Cache write failed, result not cached", "error", err)
	}
}
