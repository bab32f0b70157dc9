package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// KVStore キャッシュ関数の背後にあるキーバリューストア
//
// 応答はUpstash REST APIと同じ {"result": ...} 形式のJSONをそのまま返す。
// 値は不透明なバイト列として扱い、有効期限は設定しない。
type KVStore interface {
	// Get キーの値を取得（存在しない場合は {"result":null}）
	Get(ctx context.Context, key string) ([]byte, error)

	// Set キーに値を上書き保存
	Set(ctx context.Context, key string, value []byte) ([]byte, error)

	// Name バックエンド名を返す
	Name() string
}

// Envelope KVストアの応答エンベロープ
type Envelope struct {
	Result interface{} `json:"result"`
}

// NullEnvelope 値が存在しない場合の応答
func NullEnvelope() []byte {
	return []byte(`{"result":null}`)
}

// OKEnvelope 書き込み成功時の応答
func OKEnvelope() []byte {
	return []byte(`{"result":"OK"}`)
}

// StringEnvelope 文字列値を包んだ応答
func StringEnvelope(value string) ([]byte, error) {
	data, err := json.Marshal(Envelope{Result: value})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}
