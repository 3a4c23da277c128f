// Package cmd implements the CLI command structure for todolist.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/charmbracelet/log"

	"github.com/rasyadazka/todolist/internal/config"
	"github.com/rasyadazka/todolist/internal/logging"
	"github.com/rasyadazka/todolist/internal/todo"
	"github.com/rasyadazka/todolist/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := &cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.NewConsoleFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	// Determine the subcommand
	// If no args or first arg is a flag, use "tui" as default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		// Check if it looks like a subcommand (doesn't start with -)
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	// Execute the subcommand
	switch subcommand {
	case "add":
		return addCommand(cfg, logger, remainingArgs)
	case "ls", "list":
		return lsCommand(cfg, logger, remainingArgs)
	case "rm", "remove":
		return rmCommand(cfg, logger, remainingArgs)
	case "clear":
		return clearCommand(cfg, logger, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, logger, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "completion":
		return completionCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		// If it's not a recognized command, it might be a tasks file path
		// Check if it's an existing file
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			cfg.TasksFile = subcommand
			return tuiCommand(ctx, cfg, logger, remainingArgs)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the configured tasks file and its activity log. A failed
// activity log open is logged and leaves the log nil; mutations still run.
func openStore(cfg *config.Config, logger *log.Logger) (*todo.Store, *logging.ActivityLog, error) {
	store, err := todo.Open(cfg.TasksFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening tasks file: %w", err)
	}
	logger.Debug("opened tasks file", "path", store.Path(), "tasks", store.Len())

	activity, err := logging.OpenActivityLog(cfg.LogDir, store.Path())
	if err != nil {
		logger.Warn("activity log unavailable", "err", err)
		activity = nil
	}
	return store, activity, nil
}

// addCommand adds a single task. The first argument is the name; the rest
// join as the due text so "2026-02-05 14:30" works without shell quoting.
func addCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todolist add", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) < 2 {
		return fmt.Errorf("usage: todolist add NAME DUE")
	}
	name := remaining[0]
	dueText := strings.Join(remaining[1:], " ")

	store, activity, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer activity.Close()

	task, err := store.Add(name, dueText)
	if err != nil {
		return err
	}
	if err := activity.Added(task.ID, task.Name, task.Due.Format(todo.DueInputLayout)); err != nil {
		logger.Warn("activity log write failed", "err", err)
	}
	logger.Info("task added", "id", task.ID, "name", task.Name)
	fmt.Printf("Added %q, due %s.\n", task.Name, task.Due.Format(todo.DueInputLayout))
	return nil
}

// lsCommand prints the numbered due-date listing.
func lsCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todolist ls", flag.ContinueOnError)
	overdueOnly := fs.Bool("overdue", false, "Show only overdue tasks")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	tasksPath := cfg.TasksFile
	if len(remaining) == 1 {
		tasksPath = remaining[0]
	}
	if !filepath.IsAbs(tasksPath) {
		tasksPath = filepath.Join(cfg.ProjectRoot, tasksPath)
	}

	tasks, err := todo.Load(tasksPath)
	if err != nil {
		return fmt.Errorf("loading tasks file: %w", err)
	}
	logger.Debug("loaded tasks file", "path", tasksPath, "tasks", len(tasks))

	printEntries(os.Stdout, todo.List(tasks, time.Now()), *overdueOnly)
	return nil
}

// rmCommand removes the task at a 1-based position in the sorted listing.
func rmCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todolist rm", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		return fmt.Errorf("usage: todolist rm INDEX")
	}
	index, err := strconv.Atoi(remaining[0])
	if err != nil {
		return fmt.Errorf("%q: %w", remaining[0], todo.ErrInvalidIndex)
	}

	store, activity, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer activity.Close()

	task, err := store.RemoveAt(index)
	if err != nil {
		return err
	}
	if err := activity.Removed(task.ID, task.Name, task.Due.Format(todo.DueInputLayout)); err != nil {
		logger.Warn("activity log write failed", "err", err)
	}
	logger.Info("task removed", "id", task.ID, "name", task.Name)
	fmt.Printf("Removed %q.\n", task.Name)
	return nil
}

// clearCommand removes every task, prompting on stdin unless -y is given.
func clearCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todolist clear", flag.ContinueOnError)
	yes := fs.Bool("y", false, "Skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	store, activity, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer activity.Close()

	if store.Len() == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	confirmed := *yes
	if !confirmed {
		confirmed = confirmClear(os.Stdin, os.Stdout, store.Len())
	}
	n, err := store.Clear(confirmed)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Canceled.")
		return nil
	}
	if err := activity.Cleared(n); err != nil {
		logger.Warn("activity log write failed", "err", err)
	}
	logger.Info("tasks cleared", "count", n)
	fmt.Printf("Removed all %d tasks.\n", n)
	return nil
}

// confirmClear asks for a y/N answer. Anything but y (case-insensitive)
// declines, including a closed stdin.
func confirmClear(r io.Reader, w io.Writer, n int) bool {
	fmt.Fprintf(w, "Remove all %d tasks? (y/N) ", n)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// tuiCommand launches the interactive screen.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todolist tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		tasksPath := remaining[0]
		if !filepath.IsAbs(tasksPath) {
			tasksPath = filepath.Join(cfg.ProjectRoot, tasksPath)
		}
		cfg.TasksFile = tasksPath
	}

	store, activity, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer activity.Close()

	return ui.RunTUI(ctx, cfg, store, activity)
}

// doctorCommand checks the tasks file, schema, log directory, and config.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("todolist doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := &cws.Config
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	tasksPath := cfg.TasksFile
	if len(remaining) == 1 {
		tasksPath = remaining[0]
	}
	if !filepath.IsAbs(tasksPath) {
		tasksPath = filepath.Join(cfg.ProjectRoot, tasksPath)
	}
	schemaPath := cfg.SchemaFile
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(cfg.ProjectRoot, schemaPath)
	}

	fmt.Println("Todolist Doctor")
	fmt.Println("===============")
	fmt.Println()

	allOK := true

	// Check project root
	fmt.Printf("Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Check config, with the source each value came from
	configOK := true
	fmt.Println("Config:")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Printf("  File: %s\n", file)
	} else {
		fmt.Println("  File: (none)")
	}
	fmt.Printf("  ✅ tasks_file: %s (%s)\n", cfg.TasksFile, cws.Sources["tasks_file"])
	fmt.Printf("  ✅ schema_file: %s (%s)\n", cfg.SchemaFile, cws.Sources["schema_file"])
	fmt.Printf("  ✅ log_dir: %s (%s)\n", cfg.LogDir, cws.Sources["log_dir"])
	if validLogLevel(cfg.LogLevel) {
		fmt.Printf("  ✅ log_level: %s (%s)\n", cfg.LogLevel, cws.Sources["log_level"])
	} else {
		fmt.Printf("  ❌ log_level: %s (expected debug|info|warn|error|fatal)\n", cfg.LogLevel)
		configOK = false
	}
	if validLogFormat(cfg.LogFormat) {
		fmt.Printf("  ✅ log_format: %s (%s)\n", cfg.LogFormat, cws.Sources["log_format"])
	} else {
		fmt.Printf("  ❌ log_format: %s (expected text|json|logfmt)\n", cfg.LogFormat)
		configOK = false
	}
	if !configOK {
		allOK = false
	}
	fmt.Println()

	// Check tasks file
	fmt.Printf("Tasks file: %s\n", tasksPath)
	tasksInfo, err := os.Stat(tasksPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (created on first add, or run 'todolist init')")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if tasksInfo.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
		data, readErr := os.ReadFile(tasksPath)
		if readErr != nil {
			fmt.Printf("  ❌ Error: %v\n", readErr)
			allOK = false
		} else if tasks, decodeErr := todo.Decode(data); decodeErr != nil {
			fmt.Printf("  ❌ Load error: %v\n", decodeErr)
			allOK = false
		} else {
			// The schema override only applies when the file exists;
			// otherwise the built-in schema validates.
			schemaOverride := ""
			if info, err := os.Stat(schemaPath); err == nil && !info.IsDir() {
				schemaOverride = schemaPath
			}
			result := todo.Validate(data, todo.ValidationOptions{SchemaPath: schemaOverride})
			for _, w := range result.Warnings {
				fmt.Printf("  ⚠️  %s\n", w)
			}
			if result.Valid {
				fmt.Printf("  ✅ Valid (%d tasks)\n", len(tasks))
			} else {
				fmt.Println("  ❌ Validation failed:")
				for _, e := range result.Errors {
					fmt.Printf("     - %v\n", e)
				}
				allOK = false
			}
			if *verbose {
				for _, e := range todo.List(tasks, time.Now()) {
					fmt.Printf("    %s\n", formatEntry(e))
				}
			}
		}
	}
	fmt.Println()

	// Check schema file
	fmt.Printf("Schema file: %s\n", schemaPath)
	if info, err := os.Stat(schemaPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (using the built-in schema)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if info.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Check log directory
	fmt.Printf("Log directory: %s\n", cfg.LogDir)
	if _, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (created on first logged action)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Println("  ✅ OK")
		if logDir, err := logging.FindLogDir(cfg.LogDir, tasksPath); err == nil {
			if latest, err := logging.FindLatestLog(logDir); err == nil && latest != "" {
				fmt.Printf("  Latest activity log: %s\n", latest)
			}
		}
	}
	fmt.Println()

	// Overall status
	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Todolist may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// tailCommand prints the latest activity log for the configured tasks file.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.TasksFile)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	// Find the latest JSONL file
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}

	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.TailLog(ctx, os.Stdout, logPath, *n, *follow)
}

// initCommand scaffolds the tasks file, the schema, and a config file.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist init", flag.ContinueOnError)
	skipConfig := fs.Bool("skip-config", false, "Do not write todolist.toml")
	force := fs.Bool("force", false, "Overwrite existing files")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	tasksPath := cfg.TasksFile
	if !filepath.IsAbs(tasksPath) {
		tasksPath = filepath.Join(cfg.ProjectRoot, tasksPath)
	}
	schemaPath := cfg.SchemaFile
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(cfg.ProjectRoot, schemaPath)
	}
	files := []struct {
		path string
		data []byte
		skip bool
	}{
		{path: tasksPath, data: []byte("[]\n")},
		{path: schemaPath, data: []byte(todo.Schema)},
		{path: filepath.Join(cfg.ProjectRoot, "todolist.toml"), data: []byte(config.ExampleConfig()), skip: *skipConfig},
	}
	for _, f := range files {
		if f.skip {
			continue
		}
		created, err := writeInitFile(f.path, f.data, *force)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created %s\n", f.path)
		} else {
			fmt.Printf("Skipped %s (exists, use -force to overwrite)\n", f.path)
		}
	}
	return nil
}

// writeInitFile writes data to path unless the file already exists and
// force is false. Parent directories are created as needed.
func writeInitFile(path string, data []byte, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("todolist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Todolist - a to-do list ordered by due date")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todolist [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add NAME DUE    Add a task (DUE: YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	fmt.Fprintln(w, "  ls [file]       List tasks by due date (alias: list)")
	fmt.Fprintln(w, "  rm INDEX        Remove the task at INDEX in the listing (alias: remove)")
	fmt.Fprintln(w, "  clear           Remove all tasks")
	fmt.Fprintln(w, "  tui [file]      Interactive screen (default command)")
	fmt.Fprintln(w, "  doctor [file]   Check the tasks file, schema, and log directory")
	fmt.Fprintln(w, "  tail            Print the activity log")
	fmt.Fprintln(w, "  init            Create the tasks file, schema, and todolist.toml")
	fmt.Fprintln(w, "  completion      Print a shell completion script")
	fmt.Fprintln(w, "  version         Show version information")
	fmt.Fprintln(w, "  help            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -overdue")
	fmt.Fprintln(w, "        Show only overdue tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Clear Options (use with 'clear' command):")
	fmt.Fprintln(w, "  -y    Skip the confirmation prompt")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Init Options (use with 'init' command):")
	fmt.Fprintln(w, "  -skip-config")
	fmt.Fprintln(w, "        Do not write todolist.toml")
	fmt.Fprintln(w, "  -force")
	fmt.Fprintln(w, "        Overwrite existing files")
}

// printEntries writes the numbered listing, or "No tasks." when nothing
// matches.
func printEntries(w io.Writer, entries []todo.Entry, overdueOnly bool) {
	shown := 0
	for _, e := range entries {
		if overdueOnly && !e.Overdue {
			continue
		}
		fmt.Fprintln(w, formatEntry(e))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, "No tasks.")
	}
}

// formatEntry renders one listing line.
func formatEntry(e todo.Entry) string {
	line := fmt.Sprintf("%d. %s - due: %s", e.Index, e.Task.Name, e.Task.Due.Format(todo.DueInputLayout))
	if e.Overdue {
		line += " (overdue)"
	}
	return line
}

func validLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

func validLogFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "json", "logfmt":
		return true
	}
	return false
}
