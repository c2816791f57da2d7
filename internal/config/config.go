package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	NotesPath    string
	DataPath     string
	ReloadPeriod time.Duration
	SyncCmd      string
	EntryFormat  string
	LogLevel     slog.Level
}

func Load() Config {
	loadEnvFile()

	cfg := Config{
		NotesPath:   envOr("NOTESUM_NOTES_PATH", "."),
		DataPath:    os.Getenv("NOTESUM_DATA_PATH"),
		SyncCmd:     os.Getenv("NOTESUM_SYNC_CMD"),
		EntryFormat: os.Getenv("NOTESUM_ENTRY_FORMAT"),
	}
	if cfg.DataPath == "" {
		cfg.DataPath = filepath.Join(cfg.NotesPath, ".notesum")
	}
	cfg.ReloadPeriod = parseDurationOr("NOTESUM_RELOAD_PERIOD", time.Minute)
	cfg.LogLevel = parseLevelOr("NOTESUM_LOG_LEVEL", slog.LevelInfo)
	return cfg
}

func (c Config) DBPath() string {
	return filepath.Join(c.DataPath, "index.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func parseLevelOr(key string, fallback slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
