package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"idea-validator-app/internal/config"
)

// UpstashRepository Upstash REST API実装のKVストア
type UpstashRepository struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewUpstashRepository 新しいUpstashRepositoryを作成
func NewUpstashRepository(cfg *config.UpstashConfig) (*UpstashRepository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("upstash url is required")
	}
	return &UpstashRepository{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SetHTTPClient テスト用にHTTPクライアントを設定（テストコードからのみ使用）
func (r *UpstashRepository) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// Get GET <url>/get/<key>
func (r *UpstashRepository) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.commandURL("get", key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return r.do(req)
}

// Set POST <url>/set/<key>（本文が値になる）
func (r *UpstashRepository) Set(ctx context.Context, key string, value []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.commandURL("set", key), bytes.NewReader(value))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req)
}

// Name バックエンド名を返す
func (r *UpstashRepository) Name() string {
	return config.KVBackendUpstash
}

func (r *UpstashRepository) commandURL(command, key string) string {
	return fmt.Sprintf("%s/%s/%s", r.baseURL, command, url.PathEscape(key))
}

func (r *UpstashRepository) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstash response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstash returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
