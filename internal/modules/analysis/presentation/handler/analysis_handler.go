package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"idea-validator-app/internal/modules/analysis/domain"
	"idea-validator-app/internal/modules/analysis/usecase"
)

// maxBodyBytes リクエスト本文の上限
const maxBodyBytes = 1 << 20

// AnalyzeUseCaseInterface アイデア分析ユースケースのインターフェース
type AnalyzeUseCaseInterface interface {
	Analyze(ctx context.Context, idea string) (*usecase.AnalyzeOutcome, error)
	GetProviderName() string
}

// AnalysisHandler アイデア分析APIのハンドラー
type AnalysisHandler struct {
	analyzeUseCase AnalyzeUseCaseInterface
	logger         *slog.Logger
}

// NewAnalysisHandler 新しいAnalysisHandlerを作成
func NewAnalysisHandler(analyzeUseCase AnalyzeUseCaseInterface, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		analyzeUseCase: analyzeUseCase,
		logger:         logger,
	}
}

// AnalyzeRequest 分析リクエスト
type AnalyzeRequest struct {
	Idea string `json:"idea"`
}

// AnalyzeResponse 分析レスポンス
type AnalyzeResponse struct {
	Success bool                   `json:"success"`
	Result  *domain.AnalysisResult `json:"result,omitempty"`
	Cached  bool                   `json:"cached"`
	Error   string                 `json:"error,omitempty"`
}

// HandleAnalyze アイデア分析ハンドラー
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.analyzeUseCase.Analyze(r.Context(), req.Idea)
	if err != nil {
		h.sendError(w, domain.UserMessage(err), statusForError(err))
		return
	}

	cacheHeader := "MISS"
	if outcome.Cached {
		cacheHeader = "HIT"
	}
	w.Header().Set("X-Cache", cacheHeader)

	h.sendJSON(w, http.StatusOK, AnalyzeResponse{
		Success: true,
		Result:  outcome.Result,
		Cached:  outcome.Cached,
	})
}

// statusForError エラー種別をHTTPステータスに変換
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyIdea):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *AnalysisHandler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sendError エラーレスポンスを送信
func (h *AnalysisHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, statusCode, AnalyzeResponse{
		Success: false,
		Error:   message,
	})
}
