package domain

import (
	"context"
	"errors"
)

var (
	// ErrItemNotFound 指定IDの履歴が存在しない
	ErrItemNotFound = errors.New("history item not found")

	// ErrCompareSameItem 比較対象が表示中の項目と同じ、または未選択
	ErrCompareSameItem = errors.New("please select another analysis from the history to compare with this one")

	// ErrPersistFailed 履歴または設定の書き込み失敗
	ErrPersistFailed = errors.New("failed to save history")
)

// HistoryStore 履歴の永続化（履歴配列と自動保存設定の2スロット）
type HistoryStore interface {
	// LoadHistory 履歴を読み込む（破損していれば空にリセットして返す）
	LoadHistory(ctx context.Context) ([]HistoryItem, error)

	// SaveHistory 履歴全体を書き込む
	SaveHistory(ctx context.Context, items []HistoryItem) error

	// LoadAutoSave 自動保存設定を読み込む（未設定なら true）
	LoadAutoSave(ctx context.Context) (bool, error)

	// SaveAutoSave 自動保存設定を書き込む
	SaveAutoSave(ctx context.Context, enabled bool) error
}
