package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"idea-validator-app/internal/modules/analysis/domain"
)

func withToken(r *http.Request, token string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("token", token)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestShareHandler_HandleCreate(t *testing.T) {
	t.Run("正常系_公開URLあり", func(t *testing.T) {
		h := NewShareHandler("https://ideas.example.com/", discardLogger())
		body, err := json.Marshal(testResult())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/share", strings.NewReader(string(body))))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ShareResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.True(t, strings.HasPrefix(resp.Link, "https://ideas.example.com/#share="))
		require.True(t, strings.HasPrefix(resp.View, "https://ideas.example.com/share/"))

		decoded, err := domain.ParseShareLink(resp.Link)
		require.NoError(t, err)
		require.Equal(t, testResult(), decoded)
	})

	t.Run("正常系_リクエストのホストを使う", func(t *testing.T) {
		h := NewShareHandler("", discardLogger())
		body, _ := json.Marshal(testResult())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/share", strings.NewReader(string(body)))
		req.Host = "localhost:8080"
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ShareResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.True(t, strings.HasPrefix(resp.Link, "http://localhost:8080/#share="))
	})

	t.Run("異常系_スキーマ違反", func(t *testing.T) {
		h := NewShareHandler("", discardLogger())
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/share", strings.NewReader(`{"validationScore":500}`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestShareHandler_HandleView(t *testing.T) {
	t.Run("正常系_結果ページを表示", func(t *testing.T) {
		h := NewShareHandler("", discardLogger())
		token, err := domain.EncodeShareToken(testResult())
		require.NoError(t, err)

		req := withToken(httptest.NewRequest(http.MethodGet, "/share/x", nil), urlSafeToken(token))
		rec := httptest.NewRecorder()
		h.HandleView(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		html := rec.Body.String()
		require.Contains(t, html, "Validation score: 55 / 100")
		require.Contains(t, html, "<h2>Next steps</h2>")
		require.Contains(t, html, "<strong>ten</strong>")
		require.Contains(t, html, "Regulation")
	})

	t.Run("正常系_HTMLはエスケープされる", func(t *testing.T) {
		h := NewShareHandler("", discardLogger())
		result := testResult()
		result.Summary = "<script>alert(1)</script>"
		result.RedFlags[0].Title = "<b>bold</b>"
		token, err := domain.EncodeShareToken(result)
		require.NoError(t, err)

		req := withToken(httptest.NewRequest(http.MethodGet, "/share/x", nil), urlSafeToken(token))
		rec := httptest.NewRecorder()
		h.HandleView(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), "<script>")
		require.NotContains(t, rec.Body.String(), "<b>bold</b>")
	})

	t.Run("異常系_壊れたトークン", func(t *testing.T) {
		h := NewShareHandler("", discardLogger())
		token := base64.RawURLEncoding.EncodeToString([]byte(`{"broken":`))

		req := withToken(httptest.NewRequest(http.MethodGet, "/share/x", nil), token)
		rec := httptest.NewRecorder()
		h.HandleView(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "This share link is invalid or corrupted.")
	})
}
