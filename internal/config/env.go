package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// TranslateConfig selects the transformer engine, its models and the
// language pair for translate mode.
type TranslateConfig struct {
	Engine         string // "openai"|"anthropic"
	OpenAIModel    string
	AnthropicModel string
	MaxTokens      int
	SourceLang     string // BCP 47 tag, e.g. "fi"
	TargetLang     string // BCP 47 tag, e.g. "en"
}

// Config is the top-level configuration.
type Config struct {
	Logging   LoggingConfig
	Translate TranslateConfig
}

// FromEnv loads configuration from environment with sensible defaults.
// A .env file in the working directory is honored when present.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", "true")),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	cfg.Translate = TranslateConfig{
		Engine:         getEnv("TRANSLATE_ENGINE", "openai"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4.1"),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
		MaxTokens:      parseInt(getEnv("LLM_MAX_TOKENS", "4096"), 4096),
		SourceLang:     getEnv("SOURCE_LANG", "fi"),
		TargetLang:     getEnv("TARGET_LANG", "en"),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
