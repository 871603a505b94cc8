// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Embedding-provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	Storage   StorageConfig
	Execution ExecutionConfig
	Embedding EmbeddingConfig
}

// StorageConfig holds chunk store configuration.
type StorageConfig struct {
	DBPath string
}

// ExecutionConfig holds tool batch execution configuration.
type ExecutionConfig struct {
	BatchTimeout time.Duration
	MaxWorkers   int
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string
	Model     string
	CacheSize int
}

// embedderInfo holds configuration for a specific embedding provider.
type embedderInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported embedding providers and their configuration.
var embedders = map[string]embedderInfo{
	"openai": {"TOOLVAULT_EMBED_MODEL", "text-embedding-3-small", "OPENAI_API_KEY"},
	"gemini": {"TOOLVAULT_EMBED_MODEL", "text-embedding-004", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var embedderAliases = map[string]string{
	"google": "gemini",
	"gpt":    "openai",
}

// New creates settings loading values from environment variables.
// Returns an error if the embedding provider is unknown or environment
// variables contain invalid values.
func New() (Settings, error) {
	provider := normalizeEmbedder(getEnv("TOOLVAULT_EMBED_PROVIDER", "openai"))

	info, err := getEmbedderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	batchTimeout, err := getEnvDuration("TOOLVAULT_BATCH_TIMEOUT", 5*time.Minute)
	if err != nil {
		return Settings{}, err
	}

	maxWorkers, err := getEnvInt("TOOLVAULT_MAX_WORKERS", 0)
	if err != nil {
		return Settings{}, err
	}

	cacheSize, err := getEnvInt("TOOLVAULT_EMBED_CACHE", 1024)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Storage: StorageConfig{
			DBPath: getEnv("TOOLVAULT_DB_PATH", "toolvault.db"),
		},
		Execution: ExecutionConfig{
			BatchTimeout: batchTimeout,
			MaxWorkers:   maxWorkers,
		},
		Embedding: EmbeddingConfig{
			Provider:  provider,
			Model:     getEnv(info.modelEnv, info.defaultModel),
			CacheSize: cacheSize,
		},
	}, nil
}

// MustNew creates settings, panicking on invalid environment values.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeEmbedder converts provider aliases to canonical names.
func normalizeEmbedder(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := embedderAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getEmbedderInfo returns configuration for an embedding provider.
func getEmbedderInfo(provider string) (embedderInfo, error) {
	info, ok := embedders[provider]
	if !ok {
		return embedderInfo{}, fmt.Errorf("unknown embedding provider: %q", provider)
	}
	return info, nil
}

// EmbedderAPIKey returns the API key for an embedding provider from
// environment variables.
func EmbedderAPIKey(provider string) (string, error) {
	provider = normalizeEmbedder(provider)

	info, err := getEmbedderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedEmbedders returns the list of supported embedding provider names.
func SupportedEmbedders() []string {
	result := make([]string, 0, len(embedders))
	for name := range embedders {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
