package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"idea-validator-app/internal/modules/history/domain"
)

// スロットのファイル名
const (
	historyFile  = "history.json"
	autoSaveFile = "autosave.json"
)

// FileHistoryStore ディレクトリ内のJSONファイルを使う履歴ストア
type FileHistoryStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileHistoryStore 新しいFileHistoryStoreを作成
func NewFileHistoryStore(dir string, logger *slog.Logger) (*FileHistoryStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileHistoryStore{dir: dir, logger: logger}, nil
}

// LoadHistory 履歴を読み込む（壊れたファイルは削除して空を返す）
func (s *FileHistoryStore) LoadHistory(ctx context.Context) ([]domain.HistoryItem, error) {
	path := filepath.Join(s.dir, historyFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.HistoryItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var items []domain.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Corrupted history discarded", "path", path, "error", err)
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to reset history: %w", rmErr)
		}
		return []domain.HistoryItem{}, nil
	}
	if items == nil {
		items = []domain.HistoryItem{}
	}
	return items, nil
}

// SaveHistory 履歴全体を書き込む
func (s *FileHistoryStore) SaveHistory(ctx context.Context, items []domain.HistoryItem) error {
	if items == nil {
		items = []domain.HistoryItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return s.writeFile(historyFile, data)
}

// LoadAutoSave 自動保存設定（未設定・不正値なら true）
func (s *FileHistoryStore) LoadAutoSave(ctx context.Context) (bool, error) {
	path := filepath.Join(s.dir, autoSaveFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read auto-save preference: %w", err)
	}

	var enabled bool
	if err := json.Unmarshal(data, &enabled); err != nil {
		s.logger.Warn("Corrupted auto-save preference discarded", "path", path, "error", err)
		return true, nil
	}
	return enabled, nil
}

// SaveAutoSave 自動保存設定を書き込む
func (s *FileHistoryStore) SaveAutoSave(ctx context.Context, enabled bool) error {
	data, err := json.Marshal(enabled)
	if err != nil {
		return fmt.Errorf("failed to marshal auto-save preference: %w", err)
	}
	return s.writeFile(autoSaveFile, data)
}

// writeFile 一時ファイルに書いてからリネーム
func (s *FileHistoryStore) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
