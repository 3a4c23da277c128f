package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultTasksFile = "tasks.json"
	DefaultLogDir    = "~/.todolist"
)

// Config holds the full configuration for todolist.
type Config struct {
	// Paths
	TasksFile  string `toml:"tasks_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}
