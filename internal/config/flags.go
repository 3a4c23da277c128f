package config

import (
	"flag"
)

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsHelper(cfg, fs, args, nil, "")
}

// parseFlagsWithSources parses CLI flags and updates source tracking.
func parseFlagsWithSources(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	return parseFlagsHelper(cfg, fs, args, sources, SourceFlag)
}

// parseFlagsHelper is the shared implementation for flag parsing.
// If sources is non-nil, it tracks the source of each value.
func parseFlagsHelper(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource, source ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todolist", flag.ContinueOnError)
	}

	// Shadow variables let the source-tracking case see which flags were
	// actually set before touching the config
	var tasksFile, schemaFile, logDir string
	var logLevel, logFormat string
	var logTimestamps, logCaller bool

	if sources == nil {
		// Direct binding for the non-source-tracking case
		fs.StringVar(&cfg.TasksFile, "tasks", cfg.TasksFile, "Path to tasks file")
		fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to schema file")
		fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
		fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
		fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
		fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
		fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	} else {
		fs.StringVar(&tasksFile, "tasks", cfg.TasksFile, "")
		fs.StringVar(&schemaFile, "schema", cfg.SchemaFile, "")
		fs.StringVar(&logDir, "log-dir", cfg.LogDir, "")
		fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "")
		fs.StringVar(&logFormat, "log-format", cfg.LogFormat, "")
		fs.BoolVar(&logTimestamps, "log-timestamps", cfg.LogTimestamps, "")
		fs.BoolVar(&logCaller, "log-caller", cfg.LogCaller, "")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources == nil {
		// Direct binding already applied
		return nil
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"tasks":          "tasks_file",
		"schema":         "schema_file",
		"log-dir":        "log_dir",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}

	// Track which flags were set and apply to config
	flagSet := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		flagSet[f.Name] = true
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = source
		}
	})

	if flagSet["tasks"] {
		cfg.TasksFile = tasksFile
	}
	if flagSet["schema"] {
		cfg.SchemaFile = schemaFile
	}
	if flagSet["log-dir"] {
		cfg.LogDir = logDir
	}
	if flagSet["log-level"] {
		cfg.LogLevel = logLevel
	}
	if flagSet["log-format"] {
		cfg.LogFormat = logFormat
	}
	if flagSet["log-timestamps"] {
		cfg.LogTimestamps = logTimestamps
	}
	if flagSet["log-caller"] {
		cfg.LogCaller = logCaller
	}

	return nil
}
