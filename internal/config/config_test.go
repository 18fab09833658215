package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected defaults to load, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxUploadBytes != 200*1024*1024 {
		t.Errorf("Expected 200MB upload ceiling, got %d", cfg.MaxUploadBytes)
	}
	if cfg.TargetWidth != 1024 || cfg.TargetHeight != 1024 {
		t.Errorf("Expected 1024x1024 target, got %dx%d", cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.CLAHEClipLimit != 2.0 || cfg.CLAHETileSize != 8 {
		t.Errorf("Expected CLAHE clip 2.0 tile 8, got %g/%d", cfg.CLAHEClipLimit, cfg.CLAHETileSize)
	}
	if cfg.ModelName != "gemini-1.5-pro" {
		t.Errorf("Expected default model name, got %s", cfg.ModelName)
	}
	if cfg.CaseStoreBackend != CaseStoreHTTP {
		t.Errorf("Expected http case store by default, got %s", cfg.CaseStoreBackend)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("PREPROCESS_TARGET_WIDTH", "512")
	t.Setenv("PREPROCESS_TARGET_HEIGHT", "512")
	t.Setenv("ANALYSIS_TIMEOUT", "90s")
	t.Setenv("CASE_STORE_BACKEND", "azure")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected overrides to load, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Errorf("Expected 1MB ceiling, got %d", cfg.MaxUploadBytes)
	}
	if cfg.TargetWidth != 512 || cfg.TargetHeight != 512 {
		t.Errorf("Expected 512x512 target, got %dx%d", cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.AnalysisTimeout != 90*time.Second {
		t.Errorf("Expected 90s analysis timeout, got %s", cfg.AnalysisTimeout)
	}
	if cfg.CaseStoreBackend != CaseStoreAzure {
		t.Errorf("Expected azure backend, got %s", cfg.CaseStoreBackend)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"negative upload ceiling", "MAX_UPLOAD_BYTES", "-1"},
		{"zero target width", "PREPROCESS_TARGET_WIDTH", "0"},
		{"unknown case store", "CASE_STORE_BACKEND", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_MalformedNumbersFallBack(t *testing.T) {
	// Unparseable numeric overrides fall back to defaults instead of failing.
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	t.Setenv("CLAHE_CLIP_LIMIT", "very high")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected fallback to defaults, got %v", err)
	}
	if cfg.MaxUploadBytes != 200*1024*1024 {
		t.Errorf("Expected default upload ceiling, got %d", cfg.MaxUploadBytes)
	}
	if cfg.CLAHEClipLimit != 2.0 {
		t.Errorf("Expected default clip limit, got %g", cfg.CLAHEClipLimit)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: " 8080 "}
	if got := cfg.ServerAddress(); got != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %s", got)
	}
}
