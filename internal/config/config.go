// Package config reads process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/plateful/internal/middleware"
)

// Config holds the configuration for the plateful server.
type Config struct {
	Port      string
	DBPath    string
	WebDir    string
	BaseURL   string
	LogLevel  string
	LogFormat string
	// AllowedOrigins may call the API and open /ws from a browser.
	AllowedOrigins []string

	LLMProvider    string
	ClaudeProxyURL string
	ClaudeAPIKey   string
	GeminiAPIKey   string
	GeminiModel    string

	BackupDir        string
	BackupPassphrase string
	BackupInterval   time.Duration
	BackupKeep       int

	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	SeedSamples bool
}

// ProxyConfig holds the configuration for the Claude proxy.
type ProxyConfig struct {
	Port           string
	UpstreamURL    string
	Model          string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

// Load reads the plateful server configuration.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Port:      getenv("PLATEFUL_PORT", "8080"),
		DBPath:    getenv("PLATEFUL_DB_PATH", "plateful.db"),
		WebDir:    getenv("PLATEFUL_WEB_DIR", "web"),
		LogLevel:  getenv("PLATEFUL_LOG_LEVEL", "info"),
		LogFormat: getenv("PLATEFUL_LOG_FORMAT", "text"),

		LLMProvider:    strings.ToLower(getenv("PLATEFUL_LLM_PROVIDER", "demo")),
		ClaudeProxyURL: getenv("PLATEFUL_CLAUDE_PROXY_URL", "http://localhost:3001/api/claude"),
		ClaudeAPIKey:   os.Getenv("PLATEFUL_CLAUDE_API_KEY"),
		GeminiAPIKey:   os.Getenv("PLATEFUL_GEMINI_API_KEY"),
		GeminiModel:    getenv("PLATEFUL_GEMINI_MODEL", "gemini-1.5-flash"),

		BackupDir:        os.Getenv("PLATEFUL_BACKUP_DIR"),
		BackupPassphrase: os.Getenv("PLATEFUL_BACKUP_PASSPHRASE"),

		S3Bucket:    os.Getenv("PLATEFUL_S3_BUCKET"),
		S3Endpoint:  os.Getenv("PLATEFUL_S3_ENDPOINT"),
		S3Region:    os.Getenv("PLATEFUL_S3_REGION"),
		S3AccessKey: os.Getenv("PLATEFUL_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("PLATEFUL_S3_SECRET_KEY"),
	}
	cfg.BaseURL = getenv("PLATEFUL_BASE_URL", "http://localhost:"+cfg.Port)
	origin := middleware.Origin(cfg.BaseURL)
	if origin == "" {
		return nil, fmt.Errorf("PLATEFUL_BASE_URL: want an absolute URL, got %q", cfg.BaseURL)
	}
	cfg.AllowedOrigins = splitList(os.Getenv("PLATEFUL_ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{origin}
	}

	var err error
	cfg.BackupInterval, err = time.ParseDuration(getenv("PLATEFUL_BACKUP_INTERVAL", "24h"))
	if err != nil || cfg.BackupInterval <= 0 {
		return nil, fmt.Errorf("PLATEFUL_BACKUP_INTERVAL: invalid duration %q", os.Getenv("PLATEFUL_BACKUP_INTERVAL"))
	}
	cfg.BackupKeep, err = strconv.Atoi(getenv("PLATEFUL_BACKUP_KEEP", "7"))
	if err != nil || cfg.BackupKeep < 1 {
		return nil, fmt.Errorf("PLATEFUL_BACKUP_KEEP: must be a positive integer, got %q", os.Getenv("PLATEFUL_BACKUP_KEEP"))
	}
	cfg.SeedSamples, err = strconv.ParseBool(getenv("PLATEFUL_SEED_SAMPLES", "true"))
	if err != nil {
		return nil, fmt.Errorf("PLATEFUL_SEED_SAMPLES: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "demo", "claude":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("PLATEFUL_GEMINI_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("PLATEFUL_LLM_PROVIDER: unknown provider %q", c.LLMProvider)
	}
	if c.BackupDir != "" && c.BackupPassphrase == "" {
		return errors.New("PLATEFUL_BACKUP_PASSPHRASE environment variable not set")
	}
	return nil
}

// LoadProxy reads the Claude proxy configuration.
func LoadProxy() *ProxyConfig {
	loadDotEnv()

	cfg := &ProxyConfig{
		Port:        getenv("PROXY_PORT", "3001"),
		UpstreamURL: getenv("PROXY_UPSTREAM_URL", "https://api.anthropic.com/v1/messages"),
		Model:       getenv("PROXY_MODEL", "claude-3-sonnet-20240229"),
		LogLevel:    getenv("PROXY_LOG_LEVEL", "info"),
		LogFormat:   getenv("PROXY_LOG_FORMAT", "text"),
	}
	cfg.AllowedOrigins = splitList(os.Getenv("PROXY_ALLOWED_ORIGINS"))
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func loadDotEnv() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
