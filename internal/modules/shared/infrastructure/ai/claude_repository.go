package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/modules/analysis/domain"
)

// ClaudeRepository Claude APIのリポジトリ実装
type ClaudeRepository struct {
	apiKey      string
	model       string
	maxTokens   int
	httpClient  *http.Client
	apiEndpoint string // テスト用にエンドポイントを差し替え可能に
}

// NewClaudeRepository 新しいClaudeRepositoryを作成
func NewClaudeRepository(cfg *config.AnthropicConfig) *ClaudeRepository {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &ClaudeRepository{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: providerTimeout},
		apiEndpoint: "https://api.anthropic.com/v1/messages",
	}
}

// SetHTTPClient テスト用にHTTPクライアントを設定（テストコードからのみ使用）
func (r *ClaudeRepository) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// Analyze アイデアを分析
func (r *ClaudeRepository) Analyze(ctx context.Context, idea string) (*domain.AnalysisResult, error) {
	if r.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	requestBody := map[string]interface{}{
		"model":      r.model,
		"max_tokens": r.maxTokens,
		"system":     systemInstruction + schemaInstruction,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": userPrompt(idea)},
				},
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", domain.ErrAnalysisFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrAnalysisFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: API request failed: %w", domain.ErrAnalysisFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API returned status %d: %s", domain.ErrAnalysisFailed, resp.StatusCode, string(body))
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrAnalysisFailed, err)
	}

	if len(response.Content) == 0 {
		return nil, fmt.Errorf("%w: no content in response", domain.ErrAnalysisFailed)
	}

	result, err := domain.ParseAnalysisResult([]byte(response.Content[0].Text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}
	return result, nil
}

// ProviderName プロバイダー名を返す
func (r *ClaudeRepository) ProviderName() string {
	return "Anthropic Claude"
}
