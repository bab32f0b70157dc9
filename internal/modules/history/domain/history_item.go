package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	analysis "idea-validator-app/internal/modules/analysis/domain"
)

// HistoryItem 過去の分析結果
type HistoryItem struct {
	ID        string
	Idea      string
	Result    analysis.AnalysisResult
	Timestamp time.Time
	IsSaved   bool
}

// NewHistoryItem 新しいHistoryItemを作成（IDは時刻順のUUIDv7）
func NewHistoryItem(idea string, result *analysis.AnalysisResult, now time.Time) (*HistoryItem, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate history id: %w", err)
	}
	return &HistoryItem{
		ID:        id.String(),
		Idea:      idea,
		Result:    *result,
		Timestamp: now,
		IsSaved:   false,
	}, nil
}

// historyItemJSON 永続化形式（timestamp はUnixミリ秒）
type historyItemJSON struct {
	ID        string                  `json:"id"`
	Idea      string                  `json:"idea"`
	Result    analysis.AnalysisResult `json:"result"`
	Timestamp int64                   `json:"timestamp"`
	IsSaved   bool                    `json:"isSaved"`
}

// MarshalJSON 永続化形式にエンコード
func (h HistoryItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyItemJSON{
		ID:        h.ID,
		Idea:      h.Idea,
		Result:    h.Result,
		Timestamp: h.Timestamp.UnixMilli(),
		IsSaved:   h.IsSaved,
	})
}

// UnmarshalJSON 永続化形式からデコード
func (h *HistoryItem) UnmarshalJSON(data []byte) error {
	var raw historyItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return fmt.Errorf("history item has no id")
	}
	if err := raw.Result.Validate(); err != nil {
		return fmt.Errorf("history item %s: %w", raw.ID, err)
	}

	h.ID = raw.ID
	h.Idea = raw.Idea
	h.Result = raw.Result
	h.Timestamp = time.UnixMilli(raw.Timestamp)
	h.IsSaved = raw.IsSaved
	return nil
}
