// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.todolist/todolist.toml or OS-specific config directory)
// 3. Project config file (todolist.toml or .todolist.toml in the working directory)
// 4. A .env file plus environment variables (TODOLIST_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.todolist/todolist.toml (preferred)
// - Windows: %APPDATA%\todolist\todolist.toml
// - macOS: ~/Library/Application Support/todolist/todolist.toml
// - Linux/BSD: $XDG_CONFIG_HOME/todolist/todolist.toml or ~/.config/todolist/todolist.toml
//
// Project-level config locations (overrides user config):
// - ./todolist.toml (preferred)
// - ./.todolist.toml
package config
