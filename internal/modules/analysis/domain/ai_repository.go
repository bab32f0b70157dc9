package domain

import "context"

// AIRepository アイデア分析を行うAIプロバイダーのインターフェース
type AIRepository interface {
	// Analyze アイデアを分析（スキーマ検証済みの結果を返す）
	Analyze(ctx context.Context, idea string) (*AnalysisResult, error)

	// ProviderName プロバイダー名を返す
	ProviderName() string
}
