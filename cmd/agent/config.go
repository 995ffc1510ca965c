package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tymem/mem-agent/internal/router"
)

// ServiceConfig is the per-service toggle block in config.yaml. Enabling
// or disabling a service is a configuration-time decision; there is no
// runtime write path into the registry.
type ServiceConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FileConfig is the shape of config.yaml.
type FileConfig struct {
	Router struct {
		AcceptThreshold float64 `yaml:"accept_threshold"`
		ExecuteTimeout  string  `yaml:"execute_timeout"`
	} `yaml:"router"`
	Chat struct {
		FallbackOnError bool   `yaml:"fallback_on_error"`
		MaxHistoryTurns int    `yaml:"max_history_turns"`
		SessionTTL      string `yaml:"session_ttl"`
		CacheFallback   bool   `yaml:"cache_fallback_responses"`
		DefaultCity     string `yaml:"default_city"`
		DefaultTimezone string `yaml:"default_timezone"`
	} `yaml:"chat"`
	Services map[string]ServiceConfig `yaml:"services"`
}

// AppConfig holds the full agent configuration, merged from the
// environment and config.yaml.
type AppConfig struct {
	Port      string
	RedisAddr string

	MemOSAPIBase        string
	MemOSAPIKey         string
	MemoryRetentionDays int

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	DidiAPIKey string
	AmapToken  string

	RouterConfig    router.Config
	FallbackOnError bool
	MaxHistoryTurns int
	SessionTTL      time.Duration
	CacheFallback   bool
	DefaultCity     string
	DefaultTimezone string

	Services map[string]ServiceConfig
}

// ServiceEnabled reports the configured toggle for a service, defaulting
// to enabled when the service has no block in config.yaml.
func (c *AppConfig) ServiceEnabled(name string) bool {
	sc, ok := c.Services[name]
	if !ok {
		return true
	}
	return sc.Enabled
}

// LoadConfig loads a .env file (local development only), environment
// variables, and config.yaml.
func LoadConfig(configPath string) (*AppConfig, error) {
	// In release mode configuration arrives as real environment variables;
	// a .env file is a local-development convenience.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		Port:         envOr("PORT", "8080"),
		RedisAddr:    envOr("REDIS_ADDR", "localhost:6379"),
		MemOSAPIBase: envOr("MEMOS_API_BASE", "https://api.openmem.net"),
		MemOSAPIKey:  os.Getenv("MEMOS_API_KEY"),
		LLMBaseURL:   envOr("LLM_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		LLMAPIKey:    firstEnv("DASHSCOPE_API_KEY", "OPENAI_API_KEY"),
		LLMModel:     envOr("LLM_MODEL", "qwen-max"),
		DidiAPIKey:   os.Getenv("DIDI_API_KEY"),
		AmapToken:    os.Getenv("AMAP_TOKEN"),
	}

	cfg.MemoryRetentionDays = 30
	if v := os.Getenv("MEMORY_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MEMORY_RETENTION_DAYS %q: %w", v, err)
		}
		cfg.MemoryRetentionDays = days
	}

	if cfg.MemOSAPIKey == "" {
		return nil, fmt.Errorf("MEMOS_API_KEY environment variable is not set")
	}
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("no LLM API key set (DASHSCOPE_API_KEY or OPENAI_API_KEY)")
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	cfg.RouterConfig = router.Config{AcceptThreshold: fc.Router.AcceptThreshold}
	if fc.Router.ExecuteTimeout != "" {
		d, err := time.ParseDuration(fc.Router.ExecuteTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid router.execute_timeout %q: %w", fc.Router.ExecuteTimeout, err)
		}
		cfg.RouterConfig.ExecuteTimeout = d
	}

	cfg.FallbackOnError = fc.Chat.FallbackOnError
	cfg.MaxHistoryTurns = fc.Chat.MaxHistoryTurns
	cfg.CacheFallback = fc.Chat.CacheFallback
	cfg.DefaultCity = fc.Chat.DefaultCity
	cfg.DefaultTimezone = fc.Chat.DefaultTimezone
	cfg.SessionTTL = time.Hour
	if fc.Chat.SessionTTL != "" {
		d, err := time.ParseDuration(fc.Chat.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid chat.session_ttl %q: %w", fc.Chat.SessionTTL, err)
		}
		cfg.SessionTTL = d
	}

	cfg.Services = fc.Services
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
