// Package logging writes the JSONL activity log, tail output, and
// console logging.
package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Actions recorded in the activity log.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionClear  = "clear"
)

// Event is one activity log record.
type Event struct {
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
	TaskID string    `json:"task_id,omitempty"`
	Name   string    `json:"name,omitempty"`
	Due    string    `json:"due,omitempty"`
	Count  int       `json:"count,omitempty"`
}

// ActivityLog appends JSONL events for one tasks file. Each tasks file
// gets its own directory under the base dir, and events go to a daily
// file so tail has a single growing log to follow.
type ActivityLog struct {
	Dir     string
	LogPath string
	file    *os.File
}

// OpenActivityLog creates the log directory for tasksFile and opens
// today's log file for appending.
func OpenActivityLog(baseDir, tasksFile string) (*ActivityLog, error) {
	logDir, err := FindLogDir(baseDir, tasksFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(logDir, dailyLogName(time.Now()))
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &ActivityLog{
		Dir:     logDir,
		LogPath: logPath,
		file:    file,
	}, nil
}

// Append writes one event. A zero Time is filled in with the current time.
func (a *ActivityLog) Append(event Event) error {
	if a == nil || a.file == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	data = append(data, '\n')
	_, err = a.file.Write(data)
	return err
}

// Added records an add action.
func (a *ActivityLog) Added(taskID, name, due string) error {
	return a.Append(Event{Action: ActionAdd, TaskID: taskID, Name: name, Due: due})
}

// Removed records a remove action.
func (a *ActivityLog) Removed(taskID, name, due string) error {
	return a.Append(Event{Action: ActionRemove, TaskID: taskID, Name: name, Due: due})
}

// Cleared records a clear action with the number of removed tasks.
func (a *ActivityLog) Cleared(count int) error {
	return a.Append(Event{Action: ActionClear, Count: count})
}

// Close closes the log file.
func (a *ActivityLog) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	return a.file.Close()
}

// FindLogDir returns the log directory for a given tasks file without
// creating it.
func FindLogDir(baseDir, tasksFile string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	if tasksFile == "" {
		return "", fmt.Errorf("tasks file is empty")
	}

	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	resolved := tasksFile
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}

	return filepath.Join(baseDir, tasksFileSlug(resolved)), nil
}

// tasksFileSlug builds a directory name for a tasks file path. The slug
// keeps the file name readable and the hash keeps distinct paths with
// the same base name apart.
func tasksFileSlug(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return fmt.Sprintf("%s-%s", slugify(name), hashPath(path))
}

func dailyLogName(now time.Time) string {
	return fmt.Sprintf("activity-%s.jsonl", now.UTC().Format("20060102"))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "tasks"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "tasks"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}
