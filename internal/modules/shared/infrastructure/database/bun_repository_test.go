package database

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	"idea-validator-app/internal/modules/history/domain"
)

func setupTestRepo(t *testing.T) (*BunHistoryRepository, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := NewBunHistoryRepository(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo, dir
}

func testItem(id, idea string, ts time.Time, saved bool) domain.HistoryItem {
	return domain.HistoryItem{
		ID:   id,
		Idea: idea,
		Result: analysis.AnalysisResult{
			ValidationScore: 64,
			ScoreRationale:  "ok",
			Summary:         "**bold** summary",
			RedFlags: []analysis.RedFlag{
				{Title: "t", Description: "d", Severity: analysis.SeverityMedium, Category: analysis.CategoryMarket, Suggestion: "s"},
			},
		},
		Timestamp: ts,
		IsSaved:   saved,
	}
}

func TestBunHistoryRepository_SaveLoad(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	empty, err := repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, empty)

	ts := time.UnixMilli(1_700_000_000_500)
	items := []domain.HistoryItem{
		testItem("b", "newer", ts.Add(time.Minute), false),
		testItem("a", "older", ts, true),
	}
	require.NoError(t, repo.SaveHistory(ctx, items))

	loaded, err := repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// 保存順を保持
	require.Equal(t, "b", loaded[0].ID)
	require.Equal(t, "a", loaded[1].ID)
	require.True(t, loaded[1].IsSaved)
	require.True(t, loaded[1].Timestamp.Equal(ts))
	require.Equal(t, items[0].Result, loaded[0].Result)

	// 全件置き換え
	require.NoError(t, repo.SaveHistory(ctx, items[1:]))
	loaded, err = repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	require.NoError(t, repo.SaveHistory(ctx, nil))
	loaded, err = repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestBunHistoryRepository_Reopen(t *testing.T) {
	repo, dir := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveHistory(ctx, []domain.HistoryItem{testItem("a", "idea", time.Now(), false)}))
	require.NoError(t, repo.SaveAutoSave(ctx, false))
	require.NoError(t, repo.Close())

	reopened, err := NewBunHistoryRepository(dir, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	autoSave, err := reopened.LoadAutoSave(ctx)
	require.NoError(t, err)
	require.False(t, autoSave)
}

func TestBunHistoryRepository_CorruptedRowResetsSlot(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveHistory(ctx, []domain.HistoryItem{testItem("a", "idea", time.Now(), false)}))

	_, err := repo.db.ExecContext(ctx, "UPDATE history_items SET result = ? WHERE id = ?", "{not json", "a")
	require.NoError(t, err)

	loaded, err := repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	// 破棄後は空のまま
	count, err := repo.db.NewSelect().Model((*HistoryItem)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestBunHistoryRepository_AutoSave(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		set  *bool
		want bool
	}{
		{name: "未設定はtrue", set: nil, want: true},
		{name: "falseを保存", set: boolPtr(false), want: false},
		{name: "trueで上書き", set: boolPtr(true), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set != nil {
				require.NoError(t, repo.SaveAutoSave(ctx, *tt.set))
			}
			got, err := repo.LoadAutoSave(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func boolPtr(b bool) *bool { return &b }
