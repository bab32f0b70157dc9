package domain

import (
	"sort"
	"strings"
	"time"
)

// グループのラベル
const (
	GroupToday     = "Today"
	GroupYesterday = "Yesterday"
)

// groupDateLayout それ以前の日付ラベル
const groupDateLayout = "January 2, 2006"

// HistoryGroup 日付ごとの履歴グループ
type HistoryGroup struct {
	Label string
	Items []HistoryItem
}

// SortItems 保存済みを先頭に、その中で新しい順に並べた複製を返す
func SortItems(items []HistoryItem) []HistoryItem {
	sorted := make([]HistoryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsSaved != sorted[j].IsSaved {
			return sorted[i].IsSaved
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// FilterItems アイデアに検索語を含む項目（大文字小文字を区別しない）
//
// 空白のみの検索語は全件を返す。
func FilterItems(items []HistoryItem, search string) []HistoryItem {
	if strings.TrimSpace(search) == "" {
		return items
	}
	needle := strings.ToLower(search)
	filtered := make([]HistoryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Idea), needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// GroupByDay 暦日ごとにまとめる（グループは初出順、now のタイムゾーンで判定）
func GroupByDay(items []HistoryItem, now time.Time) []HistoryGroup {
	loc := now.Location()
	today := dayOf(now)
	yesterday := today.AddDate(0, 0, -1)

	var groups []HistoryGroup
	index := make(map[string]int)

	for _, item := range items {
		day := dayOf(item.Timestamp.In(loc))

		var label string
		switch {
		case day.Equal(today):
			label = GroupToday
		case day.Equal(yesterday):
			label = GroupYesterday
		default:
			label = day.Format(groupDateLayout)
		}

		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, HistoryGroup{Label: label})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// TrendPoint スコア推移の1点
type TrendPoint struct {
	ID        string
	Idea      string
	Score     int
	Timestamp time.Time
}

// ScoreTrend 古い順に並べたスコアの推移
//
// 同時刻の項目は入力の順序を保つ。
func ScoreTrend(items []HistoryItem) []TrendPoint {
	ordered := make([]HistoryItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	points := make([]TrendPoint, 0, len(ordered))
	for _, item := range ordered {
		points = append(points, TrendPoint{
			ID:        item.ID,
			Idea:      item.Idea,
			Score:     item.Result.ValidationScore,
			Timestamp: item.Timestamp,
		})
	}
	return points
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
