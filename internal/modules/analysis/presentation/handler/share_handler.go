package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"idea-validator-app/internal/modules/analysis/domain"
)

// ShareHandler 共有リンクの作成と閲覧のハンドラー
type ShareHandler struct {
	publicURL string
	markdown  goldmark.Markdown
	logger    *slog.Logger
}

// NewShareHandler 新しいShareHandlerを作成
//
// publicURL は共有リンクのベース。空の場合はリクエストのホストから組み立てる。
func NewShareHandler(publicURL string, logger *slog.Logger) *ShareHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShareHandler{
		publicURL: strings.TrimRight(publicURL, "/"),
		markdown:  goldmark.New(),
		logger:    logger,
	}
}

// ShareResponse 共有リンク作成レスポンス
type ShareResponse struct {
	Link  string `json:"link"`
	Token string `json:"token"`
	// View サーバー描画の閲覧ページ（URLセーフなトークン）
	View string `json:"view"`
}

// HandleCreate POST /api/v1/share（本文は分析結果）
func (h *ShareHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.sendError(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	result, err := domain.ParseAnalysisResult(data)
	if err != nil {
		h.sendError(w, "Invalid analysis result", http.StatusBadRequest)
		return
	}

	link, err := domain.BuildShareLink(h.baseURL(r)+"/", result)
	if err != nil {
		h.logger.Error("Failed to build share link", "error", err)
		h.sendError(w, "Failed to build share link", http.StatusInternalServerError)
		return
	}
	token, err := domain.EncodeShareToken(result)
	if err != nil {
		h.sendError(w, "Failed to build share link", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ShareResponse{
		Link:  link,
		Token: token,
		View:  h.baseURL(r) + "/share/" + urlSafeToken(token),
	})
}

// HandleView GET /share/{token} 読み取り専用の結果ページ
func (h *ShareHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result, err := domain.DecodeShareToken(token)
	if err != nil {
		h.logger.Info("Invalid share token", "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_ = shareTemplate.Execute(w, shareView{Error: domain.UserMessage(err)})
		return
	}

	view, err := h.buildView(result)
	if err != nil {
		h.logger.Error("Failed to render summary", "error", err)
		http.Error(w, "Failed to render result", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := shareTemplate.Execute(&buf, view); err != nil {
		h.logger.Error("Failed to execute share template", "error", err)
		http.Error(w, "Failed to render result", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// urlSafeToken パスに埋め込めるURLセーフ形式へ変換
func urlSafeToken(token string) string {
	return strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(token), "=")
}

func (h *ShareHandler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (h *ShareHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// shareView 共有ページの表示データ
type shareView struct {
	Error       string
	Result      *domain.AnalysisResult
	SummaryHTML template.HTML
	Categories  []domain.RiskCategory
	Severities  []domain.Severity
	Matrix      domain.RiskMatrix
}

func (h *ShareHandler) buildView(result *domain.AnalysisResult) (shareView, error) {
	var summary bytes.Buffer
	// goldmark は既定で生のHTMLを出力しない
	if err := h.markdown.Convert([]byte(result.Summary), &summary); err != nil {
		return shareView{}, fmt.Errorf("failed to convert summary: %w", err)
	}
	return shareView{
		Result:      result,
		SummaryHTML: template.HTML(summary.String()),
		Categories:  domain.RiskCategories,
		Severities:  domain.Severities,
		Matrix:      domain.NewRiskMatrix(result.RedFlags),
	}, nil
}

var shareTemplate = template.Must(template.New("share").Funcs(template.FuncMap{
	"count": func(m domain.RiskMatrix, c domain.RiskCategory, s domain.Severity) int {
		return m.Count(c, s)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Startup Idea Analysis</title>
</head>
<body>
{{if .Error}}
<h1>Shared analysis unavailable</h1>
<p class="error">{{.Error}}</p>
{{else}}
<h1>Validation score: {{.Result.ValidationScore}} / 100</h1>
<p class="rationale">{{.Result.ScoreRationale}}</p>
<section class="summary">{{.SummaryHTML}}</section>
<h2>Risk matrix</h2>
<table class="matrix">
<tr><th></th>{{range .Severities}}<th>{{.}}</th>{{end}}</tr>
{{range $c := .Categories}}<tr><th>{{$c}}</th>{{range $s := $.Severities}}<td>{{count $.Matrix $c $s}}</td>{{end}}</tr>
{{end}}</table>
<h2>Red flags</h2>
{{range .Result.RedFlags}}<article class="flag {{.Severity}}">
<h3>{{.Title}}</h3>
<p><strong>{{.Severity}}</strong> · {{.Category}}</p>
<p>{{.Description}}</p>
<p class="suggestion">{{.Suggestion}}</p>
</article>
{{else}}<p>No red flags identified.</p>
{{end}}
{{end}}
</body>
</html>
`))
