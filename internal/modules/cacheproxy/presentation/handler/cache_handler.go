package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"idea-validator-app/internal/modules/cacheproxy/domain"
)

// maxBodyBytes キャッシュ書き込みリクエストの上限
const maxBodyBytes = 1 << 20

// CacheHandler KVストアへのキャッシュ関数ハンドラー
type CacheHandler struct {
	store  domain.KVStore
	logger *slog.Logger
}

// NewCacheHandler 新しいCacheHandlerを作成
func NewCacheHandler(store domain.KVStore, logger *slog.Logger) *CacheHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheHandler{store: store, logger: logger}
}

// CacheSetRequest 書き込みリクエスト
type CacheSetRequest struct {
	Query    string          `json:"query"`
	Response json.RawMessage `json:"response"`
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP GET は読み出し、POST は書き込み、その他は405
func (h *CacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handleSet(w, r)
	default:
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CacheHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if _, ok := values["query"]; !ok {
		h.sendError(w, "query parameter is required", http.StatusBadRequest)
		return
	}
	query := values.Get("query")

	body, err := h.store.Get(r.Context(), query)
	if err != nil {
		h.logger.Warn("KV store read failed", "backend", h.store.Name(), "error", err)
		h.sendError(w, "Cache backend unavailable", http.StatusBadGateway)
		return
	}
	h.sendRaw(w, body)
}

func (h *CacheHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.sendError(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req CacheSetRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		h.sendError(w, "query is required", http.StatusBadRequest)
		return
	}
	value := bytes.TrimSpace(req.Response)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		h.sendError(w, "response is required", http.StatusBadRequest)
		return
	}

	body, err := h.store.Set(r.Context(), req.Query, value)
	if err != nil {
		h.logger.Warn("KV store write failed", "backend", h.store.Name(), "error", err)
		h.sendError(w, "Cache backend unavailable", http.StatusBadGateway)
		return
	}
	h.sendRaw(w, body)
}

// sendRaw KVストアの応答をそのまま返す
func (h *CacheHandler) sendRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// sendError エラーレスポンスを送信
func (h *CacheHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
