package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvHelper(cfg, nil, "")
}

// loadFromEnvWithSources loads environment variables and updates source tracking.
func loadFromEnvWithSources(cfg *Config, sources map[string]ConfigSource) {
	loadFromEnvHelper(cfg, sources, SourceEnv)
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource, source ConfigSource) {
	// A .env file in the working directory is applied first, so the
	// TODOLIST_* lookups below see it. Variables already set in the
	// environment win over the file.
	_ = godotenv.Load()

	setEnv := func(field string) {
		if sources != nil {
			sources[field] = source
		}
	}

	if v := os.Getenv("TODOLIST_TASKS"); v != "" {
		cfg.TasksFile = v
		setEnv("tasks_file")
	}
	if v := os.Getenv("TODOLIST_SCHEMA"); v != "" {
		cfg.SchemaFile = v
		setEnv("schema_file")
	}
	if v := os.Getenv("TODOLIST_LOG_DIR"); v != "" {
		cfg.LogDir = v
		setEnv("log_dir")
	}
	if v := os.Getenv("TODOLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("TODOLIST_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("TODOLIST_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("TODOLIST_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
