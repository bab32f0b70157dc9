package ai

import (
	"fmt"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/modules/analysis/domain"
)

// NewAIRepository 設定のプロバイダー名からAIリポジトリを作成
func NewAIRepository(cfg *config.AIConfig) (domain.AIRepository, error) {
	switch cfg.Provider {
	case "", config.ProviderGemini:
		return NewGeminiRepository(&cfg.Gemini), nil
	case config.ProviderAnthropic:
		return NewClaudeRepository(&cfg.Anthropic), nil
	case config.ProviderOpenAI:
		return NewOpenAIRepository(&cfg.OpenAI), nil
	}
	return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
}
