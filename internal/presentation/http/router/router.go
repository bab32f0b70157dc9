package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idea-validator-app/internal/presentation/di"
	"idea-validator-app/internal/presentation/http/middleware"
)

// NewRouter 新しいルーターを作成
func NewRouter(container *di.Container) http.Handler {
	logger := container.Logger()
	r := chi.NewRouter()

	// ミドルウェアの適用（外側から順に）
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Cache"},
		MaxAge:         3600,
	}))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery(logger))

	// Health check / Metrics
	r.Method(http.MethodGet, "/health", container.HealthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(container.Registry(), promhttp.HandlerOpts{}))

	// キャッシュ関数（メソッド判定はハンドラー側）
	r.Handle("/api/v1/cache", container.CacheHandler())

	// 分析 API
	analysisHandler := container.AnalysisHandler()
	r.HandleFunc("/api/v1/analyze", analysisHandler.HandleAnalyze)

	// 共有リンク
	shareHandler := container.ShareHandler()
	r.Post("/api/v1/share", shareHandler.HandleCreate)
	r.Get("/share/{token}", shareHandler.HandleView)

	return r
}
