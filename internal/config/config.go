package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AIプロバイダー名
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// KVストアのバックエンド名
const (
	KVBackendNone    = "none"
	KVBackendUpstash = "upstash"
	KVBackendRedis   = "redis"
)

// 履歴ストアのバックエンド名
const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
)

// Config アプリケーション全体の設定
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	AI      AIConfig      `yaml:"ai"`
	Cache   CacheConfig   `yaml:"cache"`
	KVStore KVStoreConfig `yaml:"kv_store"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig HTTPサーバーの設定
type ServerConfig struct {
	Port string `yaml:"port"`
	// PublicURL 共有リンクのベースURL
	PublicURL string `yaml:"public_url"`
}

// AIConfig AIプロバイダーの設定
type AIConfig struct {
	Provider  string          `yaml:"provider"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
}

// GeminiConfig Gemini APIの設定
type GeminiConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// AnthropicConfig Anthropic APIの設定
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// OpenAIConfig OpenAI APIの設定
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// CacheConfig 分析結果キャッシュの設定
type CacheConfig struct {
	// Endpoint キャッシュ関数のURL（CLIが使用）
	Endpoint     string        `yaml:"endpoint"`
	TTL          time.Duration `yaml:"ttl"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KVStoreConfig キャッシュ関数の背後にあるKVストアの設定
type KVStoreConfig struct {
	Backend string        `yaml:"backend"`
	Upstash UpstashConfig `yaml:"upstash"`
	Redis   RedisConfig   `yaml:"redis"`
}

// UpstashConfig Upstash REST APIの設定
type UpstashConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// RedisConfig Redisの設定
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// HistoryConfig ローカル履歴の設定
type HistoryConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// LogConfig ログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load 設定ファイルを読み込む
func Load(configPath string) (*Config, error) {
	// 設定ファイルが存在しない場合はデフォルト設定を返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 環境変数の展開
	dataStr := os.ExpandEnv(string(data))

	// 未指定の項目はデフォルト値のまま残す
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(dataStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfig デフォルト設定を返す
func DefaultConfig() *Config {
	redisHost := "redis"
	if os.Getenv("GO_ENV") == "test" {
		redisHost = "localhost"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = os.Getenv("API_KEY")
	}

	kvBackend := KVBackendNone
	if os.Getenv("UPSTASH_REDIS_REST_URL") != "" {
		kvBackend = KVBackendUpstash
	}

	historyDir := ".idea-validator"
	if homeDir, err := os.UserHomeDir(); err == nil {
		historyDir = homeDir + string(os.PathSeparator) + ".idea-validator"
	}

	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			PublicURL: "http://localhost:8080/",
		},
		AI: AIConfig{
			Provider: ProviderGemini,
			Gemini: GeminiConfig{
				APIKey:      geminiKey,
				Model:       "gemini-2.5-flash",
				Temperature: 0.7,
			},
			Anthropic: AnthropicConfig{
				APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
				Model:     "claude-haiku-4-5-20251001",
				MaxTokens: 4096,
			},
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  "gpt-4o-mini",
			},
		},
		Cache: CacheConfig{
			Endpoint:     os.Getenv("IDEACHECK_CACHE_ENDPOINT"),
			TTL:          24 * time.Hour,
			WriteTimeout: 5 * time.Second,
		},
		KVStore: KVStoreConfig{
			Backend: kvBackend,
			Upstash: UpstashConfig{
				URL:   os.Getenv("UPSTASH_REDIS_REST_URL"),
				Token: os.Getenv("UPSTASH_REDIS_REST_TOKEN"),
			},
			Redis: RedisConfig{
				Host:     redisHost,
				Port:     6379,
				Password: "",
				DB:       0,
			},
		},
		History: HistoryConfig{
			Backend: HistoryBackendFile,
			Dir:     historyDir,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate 設定値の整合性をチェック
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported ai provider: %q", c.AI.Provider)
	}

	switch c.KVStore.Backend {
	case "", KVBackendNone, KVBackendUpstash, KVBackendRedis:
	default:
		return fmt.Errorf("unsupported kv store backend: %q", c.KVStore.Backend)
	}

	switch c.History.Backend {
	case HistoryBackendFile, HistoryBackendSQLite:
	default:
		return fmt.Errorf("unsupported history backend: %q", c.History.Backend)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive: %s", c.Cache.TTL)
	}

	return nil
}

// Save 設定をファイルに保存する
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
