package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/modules/analysis/domain"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIRepository OpenAI Chat Completions APIのリポジトリ実装
type OpenAIRepository struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIRepository 新しいOpenAIRepositoryを作成
func NewOpenAIRepository(cfg *config.OpenAIConfig) *OpenAIRepository {
	return newOpenAIRepository(cfg, "")
}

// newOpenAIRepository ベースURLを差し替え可能なコンストラクタ（テスト用）
func newOpenAIRepository(cfg *config.OpenAIConfig, baseURL string) *OpenAIRepository {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: providerTimeout}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	return &OpenAIRepository{
		client: openai.NewClientWithConfig(clientCfg),
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// Analyze アイデアを分析
func (r *OpenAIRepository) Analyze(ctx context.Context, idea string) (*domain.AnalysisResult, error) {
	if r.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction + schemaInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(idea)},
		},
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create chat completion: %w", domain.ErrAnalysisFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", domain.ErrAnalysisFailed)
	}

	result, err := domain.ParseAnalysisResult([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}
	return result, nil
}

// ProviderName プロバイダー名を返す
func (r *OpenAIRepository) ProviderName() string {
	return "OpenAI"
}
