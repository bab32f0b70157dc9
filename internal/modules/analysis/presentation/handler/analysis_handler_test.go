package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"idea-validator-app/internal/modules/analysis/domain"
	"idea-validator-app/internal/modules/analysis/usecase"
)

// MockAnalyzeUseCase モック分析ユースケース
type MockAnalyzeUseCase struct {
	AnalyzeFunc func(ctx context.Context, idea string) (*usecase.AnalyzeOutcome, error)
}

func (m *MockAnalyzeUseCase) Analyze(ctx context.Context, idea string) (*usecase.AnalyzeOutcome, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, idea)
	}
	return &usecase.AnalyzeOutcome{Result: testResult()}, nil
}

func (m *MockAnalyzeUseCase) GetProviderName() string {
	return "Mock AI Provider"
}

func testResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ValidationScore: 55,
		ScoreRationale:  "Promising but risky.",
		Summary:         "## Next steps\n\n- Talk to **ten** customers",
		RedFlags: []domain.RedFlag{
			{
				Title:       "Regulation",
				Description: "Food safety rules apply.",
				Severity:    domain.SeverityHigh,
				Category:    domain.CategoryExecution,
				Suggestion:  "Partner with a licensed roaster.",
			},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalysisHandler_HandleAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		useCaseErr  error
		cached      bool
		wantStatus  int
		wantCache   string
		wantMessage string
	}{
		{
			name:       "正常系: キャッシュミス",
			method:     http.MethodPost,
			body:       `{"idea":"A subscription box for coffee"}`,
			wantStatus: http.StatusOK,
			wantCache:  "MISS",
		},
		{
			name:       "正常系: キャッシュヒット",
			method:     http.MethodPost,
			body:       `{"idea":"A subscription box for coffee"}`,
			cached:     true,
			wantStatus: http.StatusOK,
			wantCache:  "HIT",
		},
		{
			name:        "異常系: 空のアイデア",
			method:      http.MethodPost,
			body:        `{"idea":"  "}`,
			useCaseErr:  domain.ErrEmptyIdea,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Please enter a startup idea.",
		},
		{
			name:        "異常系: APIキー未設定",
			method:      http.MethodPost,
			body:        `{"idea":"x"}`,
			useCaseErr:  fmt.Errorf("failed to analyze idea: %w", domain.ErrMissingAPIKey),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: domain.ErrMissingAPIKey.Error(),
		},
		{
			name:        "異常系: プロバイダー失敗",
			method:      http.MethodPost,
			body:        `{"idea":"x"}`,
			useCaseErr:  fmt.Errorf("failed to analyze idea: %w", fmt.Errorf("%w: timeout", domain.ErrAnalysisFailed)),
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Failed to get analysis from AI. The model may have returned an invalid response. Please try again.",
		},
		{
			name:        "異常系: 予期しないエラー",
			method:      http.MethodPost,
			body:        `{"idea":"x"}`,
			useCaseErr:  errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unknown error occurred.",
		},
		{
			name:       "異常系: 不正なJSON",
			method:     http.MethodPost,
			body:       `{"idea":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: GETメソッド",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockAnalyzeUseCase{
				AnalyzeFunc: func(ctx context.Context, idea string) (*usecase.AnalyzeOutcome, error) {
					if tt.useCaseErr != nil {
						return nil, tt.useCaseErr
					}
					return &usecase.AnalyzeOutcome{Result: testResult(), Cached: tt.cached}, nil
				},
			}
			h := NewAnalysisHandler(mock, discardLogger())

			req := httptest.NewRequest(tt.method, "/api/v1/analyze", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleAnalyze(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("X-Cache"); got != tt.wantCache {
				t.Errorf("X-Cache = %q, want %q", got, tt.wantCache)
			}

			var resp AnalyzeResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if tt.wantStatus == http.StatusOK {
				if !resp.Success || resp.Result == nil || resp.Cached != tt.cached {
					t.Errorf("response = %+v", resp)
				}
				return
			}
			if resp.Success {
				t.Error("Expected success=false")
			}
			if tt.wantMessage != "" && resp.Error != tt.wantMessage {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMessage)
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "空のアイデア", err: domain.ErrEmptyIdea, want: http.StatusBadRequest},
		{name: "APIキー未設定", err: domain.ErrMissingAPIKey, want: http.StatusServiceUnavailable},
		{name: "プロバイダー失敗", err: fmt.Errorf("%w: timeout", domain.ErrAnalysisFailed), want: http.StatusBadGateway},
		{name: "分類外のエラー", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}
