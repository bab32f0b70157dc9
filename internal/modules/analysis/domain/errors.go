package domain

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyIdea アイデアが未入力
	ErrEmptyIdea = errors.New("idea is empty")

	// ErrMissingAPIKey AIプロバイダーのAPIキーが未設定
	ErrMissingAPIKey = errors.New("API key is missing. Please set your API key in the environment variables to use the analysis feature.")

	// ErrAnalysisFailed AIプロバイダー呼び出しの失敗（通信エラー、スキーマ違反）
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrCacheMiss キャッシュにエントリが存在しない
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidShareToken 共有リンクのデコード失敗
	ErrInvalidShareToken = errors.New("invalid share token")
)

// ユーザー向けメッセージ
const (
	msgEmptyIdea      = "Please enter a startup idea."
	msgAnalysisFailed = "Failed to get analysis from AI. The model may have returned an invalid response. Please try again."
	msgInvalidShare   = "This share link is invalid or corrupted."
	msgUnknown        = "An unknown error occurred."
)

// UserMessage エラーをユーザー向けの案内文に変換
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyIdea):
		return msgEmptyIdea
	case errors.Is(err, ErrMissingAPIKey):
		return ErrMissingAPIKey.Error()
	case errors.Is(err, ErrAnalysisFailed):
		return msgAnalysisFailed
	case errors.Is(err, ErrInvalidShareToken):
		return msgInvalidShare
	}
	return msgUnknown
}

// IsBlank 空白のみの文字列かどうか
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
