package usecase

import (
	"context"
	"errors"
	"sync"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	analysisusecase "idea-validator-app/internal/modules/analysis/usecase"
	"idea-validator-app/internal/modules/history/domain"
)

// ErrNothingToShare 共有する結果が表示されていない
var ErrNothingToShare = errors.New("no analysis is displayed")

// Analyzer キャッシュ優先の分析器
type Analyzer interface {
	Analyze(ctx context.Context, idea string) (*analysisusecase.AnalyzeOutcome, error)
}

// SessionState 対話セッションの表示状態
type SessionState struct {
	Idea       string
	Result     *analysis.AnalysisResult
	Cached     bool
	ActiveID   string
	Comparison *domain.Comparison
}

// Session 対話的な分析セッション
type Session struct {
	mu       sync.Mutex
	analyzer Analyzer
	history  *HistoryUseCase
	state    SessionState
}

// NewSession 新しいSessionを作成
func NewSession(analyzer Analyzer, history *HistoryUseCase) *Session {
	return &Session{analyzer: analyzer, history: history}
}

// State 現在の表示状態
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetIdea 入力中のアイデアを設定
func (s *Session) SetIdea(idea string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Idea = idea
}

// Analyze 入力中のアイデアを分析して表示する
//
// 自動保存が有効なら履歴に記録し、その項目を表示中にする。
func (s *Session) Analyze(ctx context.Context) (*analysisusecase.AnalyzeOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idea := s.state.Idea
	if analysis.IsBlank(idea) {
		return nil, analysis.ErrEmptyIdea
	}

	s.state.Result = nil
	s.state.Cached = false
	s.state.ActiveID = ""
	s.state.Comparison = nil

	outcome, err := s.analyzer.Analyze(ctx, idea)
	if err != nil {
		return nil, err
	}

	s.state.Result = outcome.Result
	s.state.Cached = outcome.Cached

	item, err := s.history.Record(ctx, idea, outcome.Result)
	if err != nil {
		return outcome, err
	}
	if item != nil {
		s.state.ActiveID = item.ID
	}
	return outcome, nil
}

// Select 履歴の項目を表示する
func (s *Session) Select(id string) error {
	item, err := s.history.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := item.Result
	s.state = SessionState{
		Idea:     item.Idea,
		Result:   &result,
		ActiveID: item.ID,
	}
	return nil
}

// ToggleSaved 保存フラグを反転
func (s *Session) ToggleSaved(ctx context.Context, id string) (*domain.HistoryItem, error) {
	return s.history.ToggleSaved(ctx, id)
}

// Delete 履歴を削除（表示中の項目なら表示と入力をクリア）
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.history.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.ActiveID == id {
		s.state.Result = nil
		s.state.Cached = false
		s.state.Idea = ""
		s.state.ActiveID = ""
	}
	return nil
}

// ClearUnsaved 保存済み以外を削除
//
// 結果を表示中で、表示中の項目が保存済み履歴でなければ表示もクリアする。
func (s *Session) ClearUnsaved(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activeSaved := false
	if s.state.ActiveID != "" {
		if item, err := s.history.Get(s.state.ActiveID); err == nil {
			activeSaved = item.IsSaved
		}
	}

	removed, err := s.history.ClearUnsaved(ctx)
	if err != nil {
		return 0, err
	}

	if s.state.Result != nil && !activeSaved {
		s.state.Result = nil
		s.state.Cached = false
		s.state.Idea = ""
		s.state.ActiveID = ""
	}
	return removed, nil
}

// Compare 表示中の項目と別の項目を比較し、比較を表示する
func (s *Session) Compare(otherID string) (*domain.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmp, err := s.history.Compare(s.state.ActiveID, otherID)
	if err != nil {
		return nil, err
	}

	s.state.Comparison = cmp
	s.state.Result = nil
	return cmp, nil
}

// ShareLink 表示中の結果の共有リンク
func (s *Session) ShareLink(baseURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Result == nil {
		return "", ErrNothingToShare
	}
	return analysis.BuildShareLink(baseURL, s.state.Result)
}
