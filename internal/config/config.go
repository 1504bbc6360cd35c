package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL    string
	DataDir     string
	ArchivePath string

	// SessionTTL bounds how long an idle session (and its undo history)
	// survives in Redis.
	SessionTTL time.Duration

	// HistoryLimit caps the undo stack per session. Zero means unbounded.
	HistoryLimit int

	// ArchiveQueue routes completions through the Redis queue drained by
	// cmd/worker instead of writing the archive inline.
	ArchiveQueue bool
}

// fileConfig mirrors Config for the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"environment"`
	LogLevel     string `yaml:"log_level"`
	RedisURL     string `yaml:"redis_url"`
	DataDir      string `yaml:"data_dir"`
	ArchivePath  string `yaml:"archive_path"`
	SessionTTL   string `yaml:"session_ttl"`
	HistoryLimit *int   `yaml:"history_limit"`
	ArchiveQueue *bool  `yaml:"archive_queue"`
}

func defaults() fileConfig {
	limit := 20
	return fileConfig{
		Port:         "8080",
		Environment:  "development",
		LogLevel:     "info",
		RedisURL:     "localhost:6379",
		DataDir:      "./data",
		ArchivePath:  "./data/archive.db",
		SessionTTL:   "24h",
		HistoryLimit: &limit,
		ArchiveQueue: new(bool),
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	fc := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&fc, path); err != nil {
			return nil, err
		}
	}

	fc.Port = getEnv("PORT", fc.Port)
	fc.Environment = getEnv("ENVIRONMENT", fc.Environment)
	fc.LogLevel = getEnv("LOG_LEVEL", fc.LogLevel)
	fc.RedisURL = getEnv("REDIS_URL", fc.RedisURL)
	fc.DataDir = getEnv("DATA_DIR", fc.DataDir)
	fc.ArchivePath = getEnv("ARCHIVE_PATH", fc.ArchivePath)
	fc.SessionTTL = getEnv("SESSION_TTL", fc.SessionTTL)

	limit := *fc.HistoryLimit
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_LIMIT %q: %w", v, err)
		}
		limit = n
	}
	if limit < 0 {
		return nil, fmt.Errorf("history limit must not be negative, got %d", limit)
	}

	archiveQueue := *fc.ArchiveQueue
	if v := os.Getenv("ARCHIVE_QUEUE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ARCHIVE_QUEUE %q: %w", v, err)
		}
		archiveQueue = b
	}

	ttl, err := time.ParseDuration(fc.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session ttl %q: %w", fc.SessionTTL, err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	return &Config{
		Port:         fc.Port,
		Environment:  fc.Environment,
		LogLevel:     parseLogLevel(fc.LogLevel),
		RedisURL:     fc.RedisURL,
		DataDir:      fc.DataDir,
		ArchivePath:  fc.ArchivePath,
		SessionTTL:   ttl,
		HistoryLimit: limit,
		ArchiveQueue: archiveQueue,
	}, nil
}

// overlayFile replaces any field the YAML file sets; blank fields keep the
// current value.
func overlayFile(fc *fileConfig, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&fc.Port, file.Port)
	set(&fc.Environment, file.Environment)
	set(&fc.LogLevel, file.LogLevel)
	set(&fc.RedisURL, file.RedisURL)
	set(&fc.DataDir, file.DataDir)
	set(&fc.ArchivePath, file.ArchivePath)
	set(&fc.SessionTTL, file.SessionTTL)
	if file.HistoryLimit != nil {
		fc.HistoryLimit = file.HistoryLimit
	}
	if file.ArchiveQueue != nil {
		fc.ArchiveQueue = file.ArchiveQueue
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
