package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/logging"
	analysis "idea-validator-app/internal/modules/analysis/domain"
	historyDomain "idea-validator-app/internal/modules/history/domain"
	"idea-validator-app/internal/modules/history/usecase"
	"idea-validator-app/internal/presentation/di"
)

// 出力形式
const (
	formatText = "text"
	formatJSON = "json"
)

// options 全コマンド共通のフラグ
type options struct {
	configPath string
	format     string
}

// client コマンドが使う依存
type client struct {
	session   *usecase.Session
	history   *usecase.HistoryUseCase
	publicURL string
	now       func() time.Time
	close     func() error
}

// clientFactory コマンド実行ごとにclientを作成（テストで差し替え）
type clientFactory func(ctx context.Context, opts *options) (*client, error)

// cli コマンドツリーの状態
type cli struct {
	opts    options
	factory clientFactory
}

// Execute CLIを実行
func Execute() error {
	return NewRootCmd(defaultClientFactory).Execute()
}

// NewRootCmd ルートコマンドを作成
func NewRootCmd(factory clientFactory) *cobra.Command {
	c := &cli{factory: factory}

	rootCmd := &cobra.Command{
		Use:   "ideacheck",
		Short: "Validate startup ideas with an AI co-founder",
		Long: `ideacheck sends a startup idea to the configured AI provider and reports
a validation score, red flags and a summary.

Results are cached for 24 hours and recorded in a local history that can be
searched, compared and shared.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(
		&c.opts.configPath, "config", "",
		"Path to config file (default: ~/.idea-validator/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&c.opts.format, "format", formatText,
		"Output format: text, json",
	)

	rootCmd.AddCommand(c.newAnalyzeCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newAutoSaveCmd())
	rootCmd.AddCommand(c.newShareCmd())
	rootCmd.AddCommand(c.newSessionCmd())

	return rootCmd
}

// withClient clientを開いてfnを実行し、最後に閉じる
func (c *cli) withClient(cmd *cobra.Command, fn func(cl *client) error) error {
	if c.opts.format != formatText && c.opts.format != formatJSON {
		return fmt.Errorf("unsupported format: %q", c.opts.format)
	}

	cl, err := c.factory(cmd.Context(), &c.opts)
	if err != nil {
		return err
	}
	defer func() {
		if cl.close != nil {
			_ = cl.close()
		}
	}()

	return fn(cl)
}

// defaultClientFactory 設定ファイルからclientを作成
func defaultClientFactory(ctx context.Context, opts *options) (*client, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = os.Getenv("IDEA_VALIDATOR_CONFIG")
	}
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configPath = filepath.Join(homeDir, ".idea-validator", "config.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	container, err := di.NewClientContainer(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}

	return &client{
		session:   container.Session(),
		history:   container.HistoryUseCase(),
		publicURL: cfg.Server.PublicURL,
		now:       time.Now,
		close:     container.Close,
	}, nil
}

// displayError 利用者向けの文言を持つエラー
type displayError struct {
	err error
}

func (e *displayError) Error() string { return describeError(e.err) }

func (e *displayError) Unwrap() error { return e.err }

// userError 利用者向けの文言でエラーを包む
func userError(err error) error {
	if err == nil {
		return nil
	}
	return &displayError{err: err}
}

// describeError エラーを表示用の文言に変換
func describeError(err error) string {
	switch {
	case errors.Is(err, historyDomain.ErrItemNotFound),
		errors.Is(err, historyDomain.ErrCompareSameItem),
		errors.Is(err, historyDomain.ErrPersistFailed),
		errors.Is(err, usecase.ErrNothingToShare):
		return err.Error()
	}
	return analysis.UserMessage(err)
}
