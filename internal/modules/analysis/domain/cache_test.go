package domain

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"
)

func sampleResult() *AnalysisResult {
	return &AnalysisResult{
		ValidationScore: 55,
		ScoreRationale:  "rationale",
		Summary:         "summary",
		RedFlags: []RedFlag{
			{Title: "t", Description: "d", Severity: SeverityMedium, Category: CategoryFinancial, Suggestion: "s"},
		},
	}
}

func TestCacheEntry_IsFresh(t *testing.T) {
	storedAt := time.UnixMilli(1_700_000_000_000)
	entry := NewCacheEntry("idea", sampleResult(), storedAt)
	const eps = time.Millisecond

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "保存直後", now: storedAt, want: true},
		{name: "TTL-ε は有効", now: storedAt.Add(DefaultCacheTTL - eps), want: true},
		{name: "ちょうどTTLは期限切れ", now: storedAt.Add(DefaultCacheTTL), want: false},
		{name: "TTL+ε は期限切れ", now: storedAt.Add(DefaultCacheTTL + eps), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.IsFresh(tt.now, DefaultCacheTTL); got != tt.want {
				t.Errorf("IsFresh() = %v, want %v", got, tt.want)
			}
		})
	}

	if DefaultCacheTTL.Milliseconds() != 86_400_000 {
		t.Errorf("DefaultCacheTTL = %d ms, want 86400000", DefaultCacheTTL.Milliseconds())
	}
}

func TestCacheEntry_IsFresh_ZeroTimestamp(t *testing.T) {
	entry := &CacheEntry{Query: "idea", Response: *sampleResult()}
	if entry.IsFresh(time.Now(), DefaultCacheTTL) {
		t.Error("entry without timestamp should never be fresh")
	}
}

func TestCacheEntry_JSONRoundTrip(t *testing.T) {
	storedAt := time.UnixMilli(1_700_000_123_456)
	entry := NewCacheEntry("A subscription box for coffee", sampleResult(), storedAt)

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal(wire) error = %v", err)
	}
	if wire["timestamp"] != float64(storedAt.UnixMilli()) {
		t.Errorf("timestamp = %v, want %d", wire["timestamp"], storedAt.UnixMilli())
	}

	var decoded CacheEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.StoredAt.Equal(storedAt) {
		t.Errorf("StoredAt = %v, want %v", decoded.StoredAt, storedAt)
	}
	if decoded.Query != entry.Query {
		t.Errorf("Query = %q, want %q", decoded.Query, entry.Query)
	}
	if decoded.Response.ValidationScore != 55 {
		t.Errorf("ValidationScore = %d, want 55", decoded.Response.ValidationScore)
	}
}

func TestDecodeCacheEnvelope(t *testing.T) {
	storedAt := time.UnixMilli(1_700_000_000_000)
	entryJSON, err := json.Marshal(NewCacheEntry("idea", sampleResult(), storedAt))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	tests := []struct {
		name     string
		envelope string
		wantMiss bool
		wantErr  bool
	}{
		{
			name:     "正常系: オブジェクトとして格納",
			envelope: `{"result":` + string(entryJSON) + `}`,
		},
		{
			name:     "正常系: 文字列として格納",
			envelope: `{"result":` + strconv.Quote(string(entryJSON)) + `}`,
		},
		{
			name:     "正常系: null はミス",
			envelope: `{"result":null}`,
			wantMiss: true,
		},
		{
			name:     "正常系: result欠落はミス",
			envelope: `{}`,
			wantMiss: true,
		},
		{
			name:     "異常系: エンベロープが壊れている",
			envelope: `{"result":`,
			wantErr:  true,
		},
		{
			name:     "異常系: 応答がスキーマ違反",
			envelope: `{"result":{"query":"idea","response":{"validationScore":500},"timestamp":1}}`,
			wantErr:  true,
		},
		{
			name:     "異常系: 文字列がJSONではない",
			envelope: `{"result":"not json"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := DecodeCacheEnvelope([]byte(tt.envelope))
			if tt.wantMiss {
				if !errors.Is(err, ErrCacheMiss) {
					t.Fatalf("DecodeCacheEnvelope() error = %v, want ErrCacheMiss", err)
				}
				return
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeCacheEnvelope() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if errors.Is(err, ErrCacheMiss) {
					t.Error("decode failure should not be reported as a miss")
				}
				return
			}
			if !entry.StoredAt.Equal(storedAt) {
				t.Errorf("StoredAt = %v, want %v", entry.StoredAt, storedAt)
			}
		})
	}
}
