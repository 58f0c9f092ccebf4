// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Load when GEMINI_API_KEY is unset
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required")

// Config 存储应用配置
type Config struct {
	Port      string
	LogDir    string
	LogLevel  string
	DebugMode bool

	// LLM相关配置
	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	ImageBaseURL string
	CORSOrigins  []string
}

// Load 从环境变量加载配置，.env 文件可选
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := getEnvDuration("GEMINI_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogDir:        getEnv("LOG_DIR", "logs"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DebugMode:     getEnvBool("DEBUG_MODE", false),
		LLMProvider:   "google",
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"),
		GeminiTimeout: timeout,
		ImageBaseURL:  getEnv("IMAGE_BASE_URL", "https://source.unsplash.com"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"*"}),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

// LLMConfig is the provider configuration map
func (c *Config) LLMConfig() map[string]string {
	return map[string]string{
		"api_key":       c.GeminiAPIKey,
		"default_model": c.GeminiModel,
		"base_url":      c.GeminiBaseURL,
	}
}

// Addr is the listen address
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
