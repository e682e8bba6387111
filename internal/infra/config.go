package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	NanoBananaAPIKey  string
	NanoBananaBaseURL string
	UploadDir         string
	// PublicBaseURL, when set, overrides the origin derived from the inbound
	// request as the base for uploaded-asset URLs (e.g. an ngrok tunnel).
	PublicBaseURL string
	// PublicUploadURL is the anonymous file host used when the derived asset
	// URL points at a loopback address the remote API cannot reach.
	PublicUploadURL string
	// StrictAssetResolution makes asset resolution fail when the anonymous
	// upload fallback errors, instead of degrading to the loopback URL.
	StrictAssetResolution bool
	GenerateMaxWait       time.Duration
	GeneratePollInterval  time.Duration
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8000"),
		NanoBananaAPIKey:      os.Getenv("NANOBANANA_API_KEY"),
		NanoBananaBaseURL:     getEnv("NANOBANANA_BASE_URL", "https://api.nanobananaapi.ai/api/v1/nanobanana"),
		UploadDir:             getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:         os.Getenv("PUBLIC_BASE_URL"),
		PublicUploadURL:       getEnv("PUBLIC_UPLOAD_URL", "https://0x0.st"),
		StrictAssetResolution: getEnvBool("STRICT_ASSET_RESOLUTION", false),
		GenerateMaxWait:       time.Second * time.Duration(getEnvInt("GENERATE_MAX_WAIT_SECONDS", 300)),
		GeneratePollInterval:  time.Second * time.Duration(getEnvInt("GENERATE_POLL_INTERVAL_SECONDS", 3)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// The generate endpoint blocks for the whole poll loop, so the write
		// timeout must outlast the maximum wait.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 330)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.NanoBananaAPIKey == "" {
		return nil, fmt.Errorf("NANOBANANA_API_KEY is required")
	}

	if cfg.HTTPWriteTimeout <= cfg.GenerateMaxWait {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS must exceed GENERATE_MAX_WAIT_SECONDS")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
