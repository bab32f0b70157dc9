package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"idea-validator-app/internal/config"
	"idea-validator-app/internal/modules/analysis/domain"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiRepository Gemini APIのリポジトリ実装
type GeminiRepository struct {
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	apiBaseURL  string // テスト用にエンドポイントを差し替え可能に
}

// NewGeminiRepository 新しいGeminiRepositoryを作成
func NewGeminiRepository(cfg *config.GeminiConfig) *GeminiRepository {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiRepository{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: providerTimeout},
		apiBaseURL:  geminiAPIURL,
	}
}

// SetHTTPClient テスト用にHTTPクライアントを設定（テストコードからのみ使用）
func (r *GeminiRepository) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature      *float64    `json:"temperature,omitempty"`
	ResponseMimeType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   *jsonSchema `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Analyze アイデアを分析
func (r *GeminiRepository) Analyze(ctx context.Context, idea string) (*domain.AnalysisResult, error) {
	if r.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	temperature := r.temperature
	body := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt(idea)}}},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:      &temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   &analysisResponseSchema,
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", domain.ErrAnalysisFailed, err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", r.apiBaseURL, r.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrAnalysisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: API request failed: %w", domain.ErrAnalysisFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API returned status %d: %s", domain.ErrAnalysisFailed, resp.StatusCode, string(respBody))
	}

	var response geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrAnalysisFailed, err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no content in response", domain.ErrAnalysisFailed)
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	result, err := domain.ParseAnalysisResult([]byte(text.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}
	return result, nil
}

// ProviderName プロバイダー名を返す
func (r *GeminiRepository) ProviderName() string {
	return "Google Gemini"
}
