package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	"idea-validator-app/internal/modules/history/domain"
)

// autoSaveKey 自動保存設定のキー
const autoSaveKey = "autosave"

// HistoryItem BUNモデル
type HistoryItem struct {
	bun.BaseModel `bun:"table:history_items"`

	ID          string `bun:"id,pk,type:varchar(36)"`
	Position    int    `bun:"position,notnull"`
	Idea        string `bun:"idea,notnull"`
	Result      string `bun:"result,notnull,type:text"`
	TimestampMs int64  `bun:"timestamp_ms,notnull"`
	IsSaved     bool   `bun:"is_saved,notnull,default:false"`
}

// Preference BUNモデル
type Preference struct {
	bun.BaseModel `bun:"table:preferences"`

	Name      string    `bun:"name,pk,type:varchar(50)"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// BunHistoryRepository SQLiteファイルを使う履歴ストア
type BunHistoryRepository struct {
	db     *bun.DB
	logger *slog.Logger
}

// NewBunHistoryRepository <dir>/history.db を開いてテーブルを作成
func NewBunHistoryRepository(dir string, logger *slog.Logger) (*BunHistoryRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	sqldb, err := sql.Open("sqlite3", filepath.Join(dir, "history.db")+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLiteは単一書き込み
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewBunHistoryRepositoryWithDB(db, logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewBunHistoryRepositoryWithDB DBインスタンスから作成（テスト用）
func NewBunHistoryRepositoryWithDB(db *bun.DB, logger *slog.Logger) *BunHistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &BunHistoryRepository{db: db, logger: logger}
}

// Migrate テーブルを作成
func (r *BunHistoryRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*HistoryItem)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create history_items table: %w", err)
	}
	if _, err := r.db.NewCreateTable().Model((*Preference)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}

// LoadHistory 保存順に履歴を読み込む
//
// 1行でも壊れていれば履歴スロット全体を破棄して空を返す。
func (r *BunHistoryRepository) LoadHistory(ctx context.Context) ([]domain.HistoryItem, error) {
	var models []HistoryItem
	if err := r.db.NewSelect().Model(&models).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to find history items: %w", err)
	}

	items := make([]domain.HistoryItem, 0, len(models))
	for _, model := range models {
		item, err := r.toEntity(&model)
		if err != nil {
			r.logger.Warn("Corrupted history discarded", "id", model.ID, "error", err)
			if _, err := r.db.NewDelete().Model((*HistoryItem)(nil)).Where("1 = 1").Exec(ctx); err != nil {
				return nil, fmt.Errorf("failed to reset history: %w", err)
			}
			return []domain.HistoryItem{}, nil
		}
		items = append(items, *item)
	}
	return items, nil
}

// SaveHistory 履歴全体を置き換える
func (r *BunHistoryRepository) SaveHistory(ctx context.Context, items []domain.HistoryItem) error {
	models := make([]HistoryItem, 0, len(items))
	for i := range items {
		model, err := r.toModel(&items[i], i)
		if err != nil {
			return err
		}
		models = append(models, *model)
	}

	// トランザクション内で実行
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*HistoryItem)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear history items: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&models).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert history items: %w", err)
		}
		return nil
	})
}

// LoadAutoSave 自動保存設定（未設定・不正値なら true）
func (r *BunHistoryRepository) LoadAutoSave(ctx context.Context) (bool, error) {
	pref := &Preference{}
	err := r.db.NewSelect().Model(pref).Where("name = ?", autoSaveKey).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to find preference: %w", err)
	}

	enabled, err := strconv.ParseBool(pref.Value)
	if err != nil {
		r.logger.Warn("Corrupted auto-save preference discarded", "value", pref.Value)
		return true, nil
	}
	return enabled, nil
}

// SaveAutoSave 自動保存設定を保存
func (r *BunHistoryRepository) SaveAutoSave(ctx context.Context, enabled bool) error {
	pref := &Preference{
		Name:      autoSaveKey,
		Value:     strconv.FormatBool(enabled),
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(pref).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// Close データベース接続を閉じる
func (r *BunHistoryRepository) Close() error {
	return r.db.Close()
}

// toModel エンティティをモデルに変換
func (r *BunHistoryRepository) toModel(item *domain.HistoryItem, position int) (*HistoryItem, error) {
	result, err := encodeResult(&item.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result for %s: %w", item.ID, err)
	}
	return &HistoryItem{
		ID:          item.ID,
		Position:    position,
		Idea:        item.Idea,
		Result:      result,
		TimestampMs: item.Timestamp.UnixMilli(),
		IsSaved:     item.IsSaved,
	}, nil
}

// toEntity モデルをエンティティに変換
func (r *BunHistoryRepository) toEntity(model *HistoryItem) (*domain.HistoryItem, error) {
	result, err := analysis.ParseAnalysisResult([]byte(model.Result))
	if err != nil {
		return nil, err
	}
	return &domain.HistoryItem{
		ID:        model.ID,
		Idea:      model.Idea,
		Result:    *result,
		Timestamp: time.UnixMilli(model.TimestampMs),
		IsSaved:   model.IsSaved,
	}, nil
}

func encodeResult(result *analysis.AnalysisResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
