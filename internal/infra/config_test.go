package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("NANOBANANA_API_KEY", "test-key")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8000")
	}
	if cfg.NanoBananaBaseURL != "https://api.nanobananaapi.ai/api/v1/nanobanana" {
		t.Fatalf("NanoBananaBaseURL mismatch: %q", cfg.NanoBananaBaseURL)
	}
	if cfg.PublicUploadURL != "https://0x0.st" {
		t.Fatalf("PublicUploadURL mismatch: %q", cfg.PublicUploadURL)
	}
	if cfg.GenerateMaxWait != 300*time.Second {
		t.Fatalf("GenerateMaxWait mismatch: %s", cfg.GenerateMaxWait)
	}
	if cfg.GeneratePollInterval != 3*time.Second {
		t.Fatalf("GeneratePollInterval mismatch: %s", cfg.GeneratePollInterval)
	}
	if cfg.StrictAssetResolution {
		t.Fatalf("StrictAssetResolution should default to false")
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("NANOBANANA_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when NANOBANANA_API_KEY missing")
	}
}

func TestLoadConfigRejectsShortWriteTimeout(t *testing.T) {
	t.Setenv("NANOBANANA_API_KEY", "test-key")
	t.Setenv("GENERATE_MAX_WAIT_SECONDS", "300")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "60")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when write timeout does not cover the poll window")
	}
}

func TestLoadConfigStrictResolution(t *testing.T) {
	t.Setenv("NANOBANANA_API_KEY", "test-key")
	t.Setenv("STRICT_ASSET_RESOLUTION", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.StrictAssetResolution {
		t.Fatalf("StrictAssetResolution not honored")
	}
}
