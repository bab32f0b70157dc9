package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// ShareFragmentPrefix 共有リンクのURLフラグメント接頭辞
const ShareFragmentPrefix = "#share="

// EncodeShareToken 分析結果を共有トークンにエンコード
func EncodeShareToken(result *AnalysisResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result is nil")
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeShareToken 共有トークンから分析結果を復元
func DecodeShareToken(token string) (*AnalysisResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidShareToken)
	}

	data, err := decodeBase64(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}

	result, err := ParseAnalysisResult(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	return result, nil
}

// BuildShareLink ベースURLに共有フラグメントを付与
func BuildShareLink(baseURL string, result *AnalysisResult) (string, error) {
	token, err := EncodeShareToken(result)
	if err != nil {
		return "", err
	}
	if idx := strings.Index(baseURL, "#"); idx != -1 {
		baseURL = baseURL[:idx]
	}
	return baseURL + ShareFragmentPrefix + token, nil
}

// ParseShareLink 共有リンク（またはフラグメント単体）から分析結果を復元
func ParseShareLink(link string) (*AnalysisResult, error) {
	idx := strings.Index(link, ShareFragmentPrefix)
	if idx == -1 {
		return nil, fmt.Errorf("%w: missing %s fragment", ErrInvalidShareToken, ShareFragmentPrefix)
	}
	return DecodeShareToken(link[idx+len(ShareFragmentPrefix):])
}

// decodeBase64 標準・URLセーフ両方のアルファベットを受け付ける
func decodeBase64(token string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(token)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
