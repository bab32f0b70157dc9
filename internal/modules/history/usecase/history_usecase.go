package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	"idea-validator-app/internal/modules/history/domain"
)

// HistoryUseCase ローカル履歴のユースケース
//
// メモリ上のスライスが正であり、変更のたびに全件をストアへ書き込む。
type HistoryUseCase struct {
	mu       sync.Mutex
	store    domain.HistoryStore
	items    []domain.HistoryItem
	autoSave bool
	now      func() time.Time
	logger   *slog.Logger
}

// NewHistoryUseCase ストアから状態を読み込んでHistoryUseCaseを作成
//
// 読み込みに失敗した場合は空の履歴と自動保存ONで開始する。
func NewHistoryUseCase(ctx context.Context, store domain.HistoryStore, logger *slog.Logger) *HistoryUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	items, err := store.LoadHistory(ctx)
	if err != nil {
		logger.Warn("Failed to load history, starting empty", "error", err)
		items = nil
	}

	autoSave, err := store.LoadAutoSave(ctx)
	if err != nil {
		logger.Warn("Failed to load auto-save preference, defaulting to on", "error", err)
		autoSave = true
	}

	return &HistoryUseCase{
		store:    store,
		items:    items,
		autoSave: autoSave,
		now:      time.Now,
		logger:   logger,
	}
}

// Record 分析結果を履歴の先頭に追加（自動保存OFFなら何もしない）
//
// 同じアイデアの既存項目は置き換える。
func (uc *HistoryUseCase) Record(ctx context.Context, idea string, result *analysis.AnalysisResult) (*domain.HistoryItem, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.autoSave {
		return nil, nil
	}

	item, err := domain.NewHistoryItem(idea, result, uc.now())
	if err != nil {
		return nil, err
	}

	next := make([]domain.HistoryItem, 0, len(uc.items)+1)
	next = append(next, *item)
	for _, existing := range uc.items {
		if existing.Idea != idea {
			next = append(next, existing)
		}
	}

	if err := uc.persist(ctx, next); err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleSaved 保存フラグを反転
func (uc *HistoryUseCase) ToggleSaved(ctx context.Context, id string) (*domain.HistoryItem, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}

	next := uc.snapshot()
	next[i].IsSaved = !next[i].IsSaved

	if err := uc.persist(ctx, next); err != nil {
		return nil, err
	}
	toggled := next[i]
	return &toggled, nil
}

// Delete 履歴を削除
func (uc *HistoryUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}

	next := make([]domain.HistoryItem, 0, len(uc.items)-1)
	next = append(next, uc.items[:i]...)
	next = append(next, uc.items[i+1:]...)

	return uc.persist(ctx, next)
}

// ClearUnsaved 保存済み以外を全て削除し、削除件数を返す
func (uc *HistoryUseCase) ClearUnsaved(ctx context.Context) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next := make([]domain.HistoryItem, 0, len(uc.items))
	for _, item := range uc.items {
		if item.IsSaved {
			next = append(next, item)
		}
	}
	removed := len(uc.items) - len(next)

	if err := uc.persist(ctx, next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Get IDで履歴を取得
func (uc *HistoryUseCase) Get(id string) (*domain.HistoryItem, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	item := uc.items[i]
	return &item, nil
}

// Items 保存順（新しい記録が先頭）の複製を返す
func (uc *HistoryUseCase) Items() []domain.HistoryItem {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.snapshot()
}

// List 並び替え・検索・日付グループ化した一覧
func (uc *HistoryUseCase) List(search string, now time.Time) []domain.HistoryGroup {
	items := uc.Items()
	return domain.GroupByDay(domain.FilterItems(domain.SortItems(items), search), now)
}

// Trend 履歴全体のスコア推移（古い順）
func (uc *HistoryUseCase) Trend() []domain.TrendPoint {
	return domain.ScoreTrend(domain.SortItems(uc.Items()))
}

// Compare 表示中の項目と別の項目を比較
func (uc *HistoryUseCase) Compare(activeID, otherID string) (*domain.Comparison, error) {
	if activeID == "" || activeID == otherID {
		return nil, domain.ErrCompareSameItem
	}

	active, err := uc.Get(activeID)
	if err != nil {
		return nil, domain.ErrCompareSameItem
	}
	other, err := uc.Get(otherID)
	if err != nil {
		return nil, err
	}
	return domain.NewComparison(*other, *active), nil
}

// AutoSave 自動保存が有効か
func (uc *HistoryUseCase) AutoSave() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.autoSave
}

// SetAutoSave 自動保存設定を変更して永続化
func (uc *HistoryUseCase) SetAutoSave(ctx context.Context, enabled bool) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.store.SaveAutoSave(ctx, enabled); err != nil {
		return fmt.Errorf("%w: auto-save preference: %w", domain.ErrPersistFailed, err)
	}
	uc.autoSave = enabled
	return nil
}

// persist 全件を書き込み、成功したらメモリ上の状態を置き換える（ロック保持中に呼ぶ）
func (uc *HistoryUseCase) persist(ctx context.Context, next []domain.HistoryItem) error {
	if err := uc.store.SaveHistory(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
	}
	uc.items = next
	return nil
}

func (uc *HistoryUseCase) indexOf(id string) int {
	for i, item := range uc.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (uc *HistoryUseCase) snapshot() []domain.HistoryItem {
	out := make([]domain.HistoryItem, len(uc.items))
	copy(out, uc.items)
	return out
}
