// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend names accepted for REMOTE_BACKEND.
const (
	BackendDrive = "drive"
	BackendS3    = "s3"
)

// Config holds all bot configuration.
type Config struct {
	// Telegram
	BotToken        string
	BroadcastChatID int64 // 0 disables the watcher
	ActionsPerMin   int   // per-chat action limit, 0 = unlimited

	// Remote listing backend ("drive" or "s3")
	RemoteBackend string
	RootFolderID  string

	// Google Drive
	GoogleAPIKey string

	// S3 / MinIO
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool
	S3LinkTTL   time.Duration

	// Browsing
	PageSize int
	CacheTTL time.Duration

	// Watcher
	WatchInterval time.Duration
	ScanMaxDepth  int
	MaxPerCycle   int
	MinModule     int
	StatePath     string

	// Logging
	LogLevel  string
	LogFormat string

	// Observability
	MetricsAddr string // "off" disables the listener
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:        envOr("BOT_TOKEN", ""),
		BroadcastChatID: envInt64("BROADCAST_CHAT_ID", 0),
		ActionsPerMin:   envInt("ACTIONS_PER_MINUTE", 30),
		RemoteBackend:   envOr("REMOTE_BACKEND", BackendDrive),
		RootFolderID:    envOr("ROOT_FOLDER_ID", ""),
		GoogleAPIKey:    envOr("GOOGLE_API_KEY", ""),
		S3Endpoint:      envOr("S3_ENDPOINT", "http://localhost:9000"),
		S3Bucket:        envOr("S3_BUCKET", ""),
		S3AccessKey:     envOr("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:     envOr("S3_SECRET_KEY", "minioadmin"),
		S3Region:        envOr("S3_REGION", "us-east-1"),
		S3UseSSL:        envBool("S3_USE_SSL", false),
		S3LinkTTL:       envSeconds("S3_LINK_TTL_SECONDS", 24*3600),
		PageSize:        envInt("PAGE_SIZE", 25),
		CacheTTL:        envSeconds("CACHE_TTL_SECONDS", 60),
		WatchInterval:   envSeconds("WATCH_INTERVAL_SECONDS", 300),
		ScanMaxDepth:    envInt("SCAN_MAX_DEPTH", 3),
		MaxPerCycle:     envInt("MAX_NOTIFICATIONS_PER_CYCLE", 8),
		MinModule:       envInt("MIN_MODULE_LABEL", 0),
		StatePath:       envOr("STATE_PATH", "watch-state.json"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "json"),
		MetricsAddr:     envOr("METRICS_ADDR", ":9090"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	switch cfg.RemoteBackend {
	case BackendDrive:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the drive backend")
		}
		if cfg.RootFolderID == "" {
			return nil, fmt.Errorf("ROOT_FOLDER_ID is required for the drive backend")
		}
	case BackendS3:
		// An empty root id means the bucket root.
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	default:
		return nil, fmt.Errorf("unknown REMOTE_BACKEND %q (want %q or %q)", cfg.RemoteBackend, BackendDrive, BackendS3)
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envSeconds(key string, fallbackSecs int) time.Duration {
	return time.Duration(envInt(key, fallbackSecs)) * time.Second
}
