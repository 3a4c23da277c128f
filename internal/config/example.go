package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todolist configuration file
# Paths can be overridden by environment variables or CLI flags

# Tasks file (relative to the working directory)
tasks_file = "tasks.json"

# Schema file used for validation by the doctor command
schema_file = "tasks.schema.json"

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.todolist"

# Console log level: debug, info, warn, or error
log_level = "info"

# Console log format: text, json, or logfmt
log_format = "text"

# Show timestamps in console logs
log_timestamps = false

# Show caller location in console logs
# log_caller = true
`
}
