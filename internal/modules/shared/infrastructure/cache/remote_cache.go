package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"idea-validator-app/internal/modules/analysis/domain"
)

// RemoteCache キャッシュ関数（/api/v1/cache）へHTTPで接続するキャッシュ
type RemoteCache struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewRemoteCache 新しいRemoteCacheを作成
func NewRemoteCache(endpoint string) *RemoteCache {
	return &RemoteCache{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// SetHTTPClient テスト用にHTTPクライアントを設定（テストコードからのみ使用）
func (c *RemoteCache) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// remoteSetRequest キャッシュ関数への書き込みリクエスト
type remoteSetRequest struct {
	Query    string             `json:"query"`
	Response *domain.CacheEntry `json:"response"`
}

// Get GET <endpoint>?query=<key>
func (c *RemoteCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid cache endpoint: %w", err)
	}
	q := u.Query()
	q.Set("query", key)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return domain.DecodeCacheEnvelope(body)
}

// Set POST <endpoint> {query, response: {query, response, timestamp}}
func (c *RemoteCache) Set(ctx context.Context, key string, result *domain.AnalysisResult) error {
	payload, err := json.Marshal(remoteSetRequest{
		Query:    key,
		Response: domain.NewCacheEntry(key, result, c.now()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *RemoteCache) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cache request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cache returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
