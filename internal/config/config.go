package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Case image store backends.
const (
	CaseStoreHTTP  = "http"
	CaseStoreAzure = "azure"
)

// Config carries every tunable the service reads from the environment.
// Preprocessing defaults mirror the values the training material was
// authored against (1024x1024 target, CLAHE clip 2.0 on an 8x8 tile grid).
type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Preprocessing defaults
	TargetWidth    int
	TargetHeight   int
	CLAHEClipLimit float64
	CLAHETileSize  int

	// Hosted model gateway
	ModelEndpoint   string
	ModelAPIKey     string
	ModelName       string
	AnalysisTimeout time.Duration

	// Case image sources
	ImageFetchTimeout time.Duration
	CaseStoreBackend  string // "http" or "azure"
	AzureAccountName  string
	AzureAccountKey   string
	AzureContainer    string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:           getEnvOrDefault("HOST", "0.0.0.0"),
		Port:           getEnvOrDefault("PORT", "8080"),
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),

		MaxUploadBytes: parseIntOrDefault("MAX_UPLOAD_BYTES", 200*1024*1024), // 200MB

		TargetWidth:    int(parseIntOrDefault("PREPROCESS_TARGET_WIDTH", 1024)),
		TargetHeight:   int(parseIntOrDefault("PREPROCESS_TARGET_HEIGHT", 1024)),
		CLAHEClipLimit: parseFloatOrDefault("CLAHE_CLIP_LIMIT", 2.0),
		CLAHETileSize:  int(parseIntOrDefault("CLAHE_TILE_SIZE", 8)),

		ModelEndpoint:   getEnvOrDefault("MODEL_ENDPOINT", "https://generativelanguage.googleapis.com"),
		ModelAPIKey:     os.Getenv("MODEL_API_KEY"),
		ModelName:       getEnvOrDefault("MODEL_NAME", "gemini-1.5-pro"),
		AnalysisTimeout: parseDurationOrDefault("ANALYSIS_TIMEOUT", 45*time.Second),

		ImageFetchTimeout: parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		CaseStoreBackend:  getEnvOrDefault("CASE_STORE_BACKEND", "http"),
		AzureAccountName:  os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:   os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:    getEnvOrDefault("AZURE_CASE_CONTAINER", "cxr-cases"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be > 0 (got %d)", cfg.MaxUploadBytes)
	}
	if cfg.TargetWidth <= 0 || cfg.TargetHeight <= 0 {
		return nil, fmt.Errorf("preprocess target must be positive (got %dx%d)",
			cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.CLAHEClipLimit <= 0 || cfg.CLAHETileSize <= 0 {
		return nil, fmt.Errorf("CLAHE settings must be positive (clip=%g, tile=%d)",
			cfg.CLAHEClipLimit, cfg.CLAHETileSize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout, cfg.ImageFetchTimeout)
	}
	if cfg.CaseStoreBackend != CaseStoreHTTP && cfg.CaseStoreBackend != CaseStoreAzure {
		return nil, fmt.Errorf("CASE_STORE_BACKEND must be \"http\" or \"azure\" (got %q)",
			cfg.CaseStoreBackend)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
