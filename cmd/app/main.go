package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/logging"
	"idea-validator-app/internal/presentation/di"
	"idea-validator-app/internal/presentation/http/router"
)

// AppConfig アプリケーション設定
type AppConfig struct {
	ConfigPath string
	Port       string
	// LogOutput ログの出力先（nilなら標準出力）
	LogOutput io.Writer
}

// ServerInterface サーバーインターフェース（Seam化）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App アプリケーション構造体（Seamパターン）
type App struct {
	config     *AppConfig
	cfg        *config.Config
	logger     *slog.Logger
	container  *di.Container
	server     *http.Server
	serverSeam ServerInterface // テスト用のSeam
}

// NewApp 新しいAppを作成
func NewApp(appCfg *AppConfig) (*App, error) {
	if appCfg.LogOutput == nil {
		appCfg.LogOutput = os.Stdout
	}

	// 設定の読み込み
	cfg, loadErr := config.Load(appCfg.ConfigPath)
	if loadErr != nil {
		cfg = config.DefaultConfig()
	}

	logger := logging.NewLogger(appCfg.LogOutput, cfg.Log.Level, cfg.Log.Format)
	if loadErr != nil {
		logger.Warn("Failed to load config, using defaults", "path", appCfg.ConfigPath, "error", loadErr)
	}

	// ポートは 引数 > 設定 > 8080 の順
	if appCfg.Port == "" {
		appCfg.Port = cfg.Server.Port
	}
	if appCfg.Port == "" {
		appCfg.Port = "8080"
	}

	// DIコンテナの初期化
	container, err := di.NewContainer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	// サーバーの設定（書き込みタイムアウトはプロバイダー呼び出しより長く）
	server := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router.NewRouter(container),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	app := &App{
		config:    appCfg,
		cfg:       cfg,
		logger:    logger,
		container: container,
		server:    server,
	}
	// デフォルトでは実際のサーバーを使用
	app.serverSeam = server

	return app, nil
}

// Start サーバーを起動
func (a *App) Start() error {
	a.logStartup()

	// サーバー起動（Seamを使用）
	return a.serverSeam.ListenAndServe()
}

// logStartup 起動情報を出力
func (a *App) logStartup() {
	a.logger.Info("Idea validator server starting",
		"addr", "http://0.0.0.0:"+a.config.Port,
		"provider", a.container.AnalyzeUseCase().GetProviderName(),
		"kv_store", a.container.KVStore().Name(),
		"cache_ttl", a.cfg.Cache.TTL,
	)
	a.logger.Info("Endpoints",
		"health", "GET /health",
		"metrics", "GET /metrics",
		"cache", "GET|POST /api/v1/cache",
		"analyze", "POST /api/v1/analyze",
		"share", "POST /api/v1/share, GET /share/{token}",
	)
}

// Shutdown サーバーをシャットダウン
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down server...")

	// サーバーのシャットダウン（Seamを使用）
	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// コンテナのクローズ
	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	a.logger.Info("Server stopped")
	return nil
}

// Run アプリケーションを実行（グレースフルシャットダウン付き）
func (a *App) Run() error {
	// サーバー起動（goroutine）
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// シグナルの待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		// グレースフルシャットダウン
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return a.Shutdown(ctx)
	}
}

// defaultConfigPath ~/.idea-validator/config.yaml
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".idea-validator", "config.yaml")
}

// realMain 実際のmain処理（テスト可能にするため分離）
func realMain() error {
	configPath := os.Getenv("IDEA_VALIDATOR_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath()
	}

	app, err := NewApp(&AppConfig{
		ConfigPath: configPath,
		Port:       os.Getenv("PORT"),
	})
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	return app.Run()
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}
