package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultCacheTTL キャッシュエントリの有効期限
const DefaultCacheTTL = 24 * time.Hour

// Cache 分析結果キャッシュのインターフェース
//
// ストア自体はTTLを扱わない。鮮度は読み出し側が CacheEntry.IsFresh で判定する。
type Cache interface {
	// Get キーのエントリを取得（存在しない場合は ErrCacheMiss）
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set 現在時刻のタイムスタンプ付きでエントリを上書き保存
	Set(ctx context.Context, key string, result *AnalysisResult) error
}

// CacheEntry 保存時刻付きのキャッシュエントリ
type CacheEntry struct {
	Query    string
	Response AnalysisResult
	StoredAt time.Time
}

// NewCacheEntry 新しいCacheEntryを作成
func NewCacheEntry(query string, result *AnalysisResult, storedAt time.Time) *CacheEntry {
	return &CacheEntry{
		Query:    query,
		Response: *result,
		StoredAt: storedAt,
	}
}

// IsFresh 保存時刻からTTL未満かどうか
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	if e.StoredAt.IsZero() {
		return false
	}
	return now.Sub(e.StoredAt) < ttl
}

// cacheEntryWire KVストア上の表現 {query, response, timestamp(ms)}
type cacheEntryWire struct {
	Query     string          `json:"query"`
	Response  json.RawMessage `json:"response"`
	Timestamp int64           `json:"timestamp"`
}

// MarshalJSON ワイヤ形式にエンコード
func (e CacheEntry) MarshalJSON() ([]byte, error) {
	resp, err := json.Marshal(e.Response)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cacheEntryWire{
		Query:     e.Query,
		Response:  resp,
		Timestamp: e.StoredAt.UnixMilli(),
	})
}

// UnmarshalJSON ワイヤ形式からデコード（応答部分はスキーマ検証する）
func (e *CacheEntry) UnmarshalJSON(data []byte) error {
	var wire cacheEntryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.Response) == 0 {
		return fmt.Errorf("cache entry has no response")
	}

	result, err := ParseAnalysisResult(wire.Response)
	if err != nil {
		return fmt.Errorf("invalid cached response: %w", err)
	}

	e.Query = wire.Query
	e.Response = *result
	e.StoredAt = time.Time{}
	if wire.Timestamp > 0 {
		e.StoredAt = time.UnixMilli(wire.Timestamp)
	}
	return nil
}

// kvEnvelope KVストアREST APIの応答 {"result": ...}
type kvEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// DecodeCacheEnvelope KVストアの応答エンベロープからエントリを取り出す
//
// result が null なら ErrCacheMiss。値が文字列として格納されている場合は
// もう一段JSONとしてデコードする。
func DecodeCacheEnvelope(data []byte) (*CacheEntry, error) {
	var env kvEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode cache envelope: %w", err)
	}

	raw := bytes.TrimSpace(env.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrCacheMiss
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode cached string: %w", err)
		}
		raw = []byte(s)
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &entry, nil
}
