package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	"idea-validator-app/internal/modules/history/domain"
)

func newTestStore(t *testing.T) (*FileHistoryStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "nested", "history")
	store, err := NewFileHistoryStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store, dir
}

func sampleItem(id string, saved bool) domain.HistoryItem {
	return domain.HistoryItem{
		ID:   id,
		Idea: "idea " + id,
		Result: analysis.AnalysisResult{
			ValidationScore: 33,
			ScoreRationale:  "r",
			Summary:         "s",
			RedFlags:        []analysis.RedFlag{},
		},
		Timestamp: time.UnixMilli(1_700_000_000_000),
		IsSaved:   saved,
	}
}

func TestFileHistoryStore_History(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	items, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	want := []domain.HistoryItem{sampleItem("2", false), sampleItem("1", true)}
	require.NoError(t, store.SaveHistory(ctx, want))

	got, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
	require.True(t, got[1].IsSaved)

	// 一時ファイルは残らない
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "history.json", entries[0].Name())
}

func TestFileHistoryStore_CorruptedHistory(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "JSONではない", content: "{{{"},
		{name: "スキーマ違反", content: `[{"id":"1","idea":"x","result":{"validationScore":999,"redFlags":[]},"timestamp":1,"isSaved":false}]`},
		{name: "IDなし", content: `[{"idea":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestStore(t)
			path := filepath.Join(dir, "history.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			items, err := store.LoadHistory(context.Background())
			require.NoError(t, err)
			require.Empty(t, items)

			_, statErr := os.Stat(path)
			require.True(t, os.IsNotExist(statErr), "corrupted slot should be removed")
		})
	}
}

func TestFileHistoryStore_AutoSave(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	enabled, err := store.LoadAutoSave(ctx)
	require.NoError(t, err)
	require.True(t, enabled, "missing slot defaults to true")

	require.NoError(t, store.SaveAutoSave(ctx, false))
	enabled, err = store.LoadAutoSave(ctx)
	require.NoError(t, err)
	require.False(t, enabled)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "autosave.json"), []byte("maybe"), 0o600))
	enabled, err = store.LoadAutoSave(ctx)
	require.NoError(t, err)
	require.True(t, enabled, "corrupted slot defaults to true")
}
