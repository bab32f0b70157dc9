package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	analysis "idea-validator-app/internal/modules/analysis/domain"
	analysisusecase "idea-validator-app/internal/modules/analysis/usecase"
)

// MockAnalyzer モック分析器
type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, idea string) (*analysisusecase.AnalyzeOutcome, error)
	calls       int
}

func (m *MockAnalyzer) Analyze(ctx context.Context, idea string) (*analysisusecase.AnalyzeOutcome, error) {
	m.calls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, idea)
	}
	return &analysisusecase.AnalyzeOutcome{Result: result(len(idea)%100 + 1)}, nil
}

func newTestSession(t *testing.T) (*Session, *HistoryUseCase, *MockAnalyzer) {
	t.Helper()
	history := newTestHistory(t, &MockHistoryStore{})
	analyzer := &MockAnalyzer{}
	return NewSession(analyzer, history), history, analyzer
}

func analyzeIdea(t *testing.T, s *Session, idea string) string {
	t.Helper()
	s.SetIdea(idea)
	if _, err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("Analyze(%q) error = %v", idea, err)
	}
	return s.State().ActiveID
}

func TestSession_Analyze(t *testing.T) {
	s, history, analyzer := newTestSession(t)

	id := analyzeIdea(t, s, "A subscription box for coffee")

	state := s.State()
	if state.Result == nil || id == "" {
		t.Fatalf("state = %+v, want displayed result and active id", state)
	}
	if len(history.Items()) != 1 {
		t.Errorf("history size = %d, want 1", len(history.Items()))
	}
	if analyzer.calls != 1 {
		t.Errorf("analyzer calls = %d", analyzer.calls)
	}
}

func TestSession_AnalyzeBlank(t *testing.T) {
	s, _, analyzer := newTestSession(t)
	s.SetIdea("   ")

	if _, err := s.Analyze(context.Background()); !errors.Is(err, analysis.ErrEmptyIdea) {
		t.Errorf("error = %v, want ErrEmptyIdea", err)
	}
	if analyzer.calls != 0 {
		t.Error("analyzer should not be called for blank idea")
	}
}

func TestSession_AnalyzeError(t *testing.T) {
	s, history, analyzer := newTestSession(t)
	previous := analyzeIdea(t, s, "first")

	analyzer.AnalyzeFunc = func(ctx context.Context, idea string) (*analysisusecase.AnalyzeOutcome, error) {
		return nil, analysis.ErrAnalysisFailed
	}
	s.SetIdea("second")
	if _, err := s.Analyze(context.Background()); !errors.Is(err, analysis.ErrAnalysisFailed) {
		t.Fatalf("error = %v", err)
	}

	state := s.State()
	if state.Result != nil || state.ActiveID != "" {
		t.Errorf("state after failure = %+v, want cleared display", state)
	}
	if _, err := history.Get(previous); err != nil {
		t.Error("earlier history should be kept")
	}
}

func TestSession_AnalyzeAutoSaveOff(t *testing.T) {
	s, history, _ := newTestSession(t)
	if err := history.SetAutoSave(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	id := analyzeIdea(t, s, "idea")

	if id != "" {
		t.Errorf("ActiveID = %q, want empty", id)
	}
	if s.State().Result == nil {
		t.Error("result should still be displayed")
	}
	if len(history.Items()) != 0 {
		t.Error("nothing should be recorded")
	}
}

func TestSession_Delete(t *testing.T) {
	tests := []struct {
		name        string
		deleteFirst bool
		wantCleared bool
	}{
		{name: "表示中の項目を削除すると表示をクリア", deleteFirst: false, wantCleared: true},
		{name: "他の項目を削除しても表示は変わらない", deleteFirst: true, wantCleared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSession(t)
			first := analyzeIdea(t, s, "first")
			second := analyzeIdea(t, s, "second")

			target := second
			if tt.deleteFirst {
				target = first
			}
			if err := s.Delete(context.Background(), target); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}

			state := s.State()
			cleared := state.Result == nil && state.Idea == "" && state.ActiveID == ""
			if cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v (state %+v)", cleared, tt.wantCleared, state)
			}
			if !tt.wantCleared && (state.ActiveID != second || state.Idea != "second") {
				t.Errorf("display changed: %+v", state)
			}
		})
	}
}

func TestSession_ClearUnsaved(t *testing.T) {
	t.Run("未保存の表示中項目はクリア", func(t *testing.T) {
		s, _, _ := newTestSession(t)
		analyzeIdea(t, s, "idea")

		if _, err := s.ClearUnsaved(context.Background()); err != nil {
			t.Fatal(err)
		}
		if s.State().Result != nil {
			t.Error("display should be cleared")
		}
	})

	t.Run("保存済みの表示中項目は残る", func(t *testing.T) {
		s, history, _ := newTestSession(t)
		id := analyzeIdea(t, s, "idea")
		analyzeIdea(t, s, "other")
		if err := s.Select(id); err != nil {
			t.Fatal(err)
		}
		if _, err := s.ToggleSaved(context.Background(), id); err != nil {
			t.Fatal(err)
		}

		removed, err := s.ClearUnsaved(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if removed != 1 {
			t.Errorf("removed = %d, want 1", removed)
		}
		if s.State().Result == nil || s.State().ActiveID != id {
			t.Error("saved display should remain")
		}
		if len(history.Items()) != 1 {
			t.Errorf("history size = %d, want 1", len(history.Items()))
		}
	})

	t.Run("自動保存OFFで表示中の結果もクリア", func(t *testing.T) {
		s, history, _ := newTestSession(t)
		_ = history.SetAutoSave(context.Background(), false)
		analyzeIdea(t, s, "idea")

		if _, err := s.ClearUnsaved(context.Background()); err != nil {
			t.Fatal(err)
		}
		if s.State().Result != nil {
			t.Error("display without active item should be cleared")
		}
	})
}

func TestSession_SelectAndCompare(t *testing.T) {
	s, _, _ := newTestSession(t)
	first := analyzeIdea(t, s, "first")
	second := analyzeIdea(t, s, "second")

	if err := s.Select(first); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if st := s.State(); st.Idea != "first" || st.ActiveID != first {
		t.Errorf("state = %+v", st)
	}

	if _, err := s.Compare(first); err == nil {
		t.Error("comparing with itself should fail")
	}

	cmp, err := s.Compare(second)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if cmp.Target.ID != first || cmp.Base.ID != second {
		t.Errorf("comparison = %+v", cmp)
	}
	st := s.State()
	if st.Comparison == nil || st.Result != nil {
		t.Error("comparison should replace the displayed result")
	}
}

func TestSession_ShareLink(t *testing.T) {
	s, _, _ := newTestSession(t)

	if _, err := s.ShareLink("http://localhost/"); !errors.Is(err, ErrNothingToShare) {
		t.Errorf("error = %v, want ErrNothingToShare", err)
	}

	analyzeIdea(t, s, "idea")
	link, err := s.ShareLink("http://localhost/")
	if err != nil {
		t.Fatalf("ShareLink() error = %v", err)
	}
	if !strings.HasPrefix(link, "http://localhost/#share=") {
		t.Errorf("link = %s", link)
	}
}
