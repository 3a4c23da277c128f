package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// dueLayout is the persisted timestamp layout: local time, no zone suffix.
const dueLayout = "2006-01-02T15:04:05"

// Layouts accepted for user-entered due dates, tried in order. A bare date
// is due at the end of that day.
const (
	DueInputLayout     = "2006-01-02 15:04"
	DueInputDateLayout = "2006-01-02"
)

// Sentinel errors for recoverable validation failures. Callers match them
// with errors.Is and re-prompt; none of them leaves the store mutated.
var (
	ErrEmptyName    = errors.New("task name is empty")
	ErrInvalidDue   = errors.New("due date must be YYYY-MM-DD HH:MM or YYYY-MM-DD")
	ErrInvalidIndex = errors.New("task number out of range")
	ErrNotFound     = errors.New("task not found")
)

// MalformedError reports a tasks file that exists but cannot be used.
type MalformedError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *MalformedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// DueTime wraps time.Time with the tasks file's timestamp encoding.
type DueTime struct {
	time.Time
}

// MarshalJSON writes the timestamp in the persisted layout.
func (d DueTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dueLayout))
}

// UnmarshalJSON reads the persisted layout, its minute-precision variant,
// and RFC 3339 for files written by other tools.
func (d *DueTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := parseDueStamp(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDueStamp(s string) (time.Time, error) {
	for _, layout := range []string{dueLayout, "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseDueDate parses a user-entered due date. It accepts "2006-01-02 15:04"
// and "2006-01-02"; a bare date is due at 23:59 that day. Both parse in the
// local time zone. The second return is false when the text matches neither
// layout.
func ParseDueDate(text string) (time.Time, bool) {
	if t, err := time.ParseInLocation(DueInputLayout, text, time.Local); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DueInputDateLayout, text, time.Local); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, time.Local), true
	}
	return time.Time{}, false
}

// Task represents a single task in the list.
type Task struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name"`
	Due  DueTime `json:"due"`
}

// IsZero returns true if the task is empty (has no name).
func (t *Task) IsZero() bool {
	return t.Name == ""
}

// Load reads and parses a tasks file. A missing file is not an error and
// yields an empty list. Corrupt JSON or structurally invalid entries return
// a *MalformedError.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	return Decode(data)
}

// Decode parses raw tasks-file content. Each entry is decoded separately so
// errors carry the index of the offending entry.
func Decode(data []byte) ([]Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedError{Err: fmt.Errorf("parse tasks file: %w", err)}
	}

	tasks := make([]Task, 0, len(raw))
	for i, entry := range raw {
		var t Task
		if err := json.Unmarshal(entry, &t); err != nil {
			return nil, &MalformedError{Path: fmt.Sprintf("[%d]", i), Err: err}
		}
		if err := validateTask(&t, i); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validateTask performs the minimal structural checks on a decoded entry.
func validateTask(t *Task, index int) *MalformedError {
	if isBlank(t.Name) {
		return &MalformedError{
			Path: fmt.Sprintf("[%d].name", index),
			Err:  fmt.Errorf("missing required field"),
		}
	}
	if t.Due.IsZero() {
		return &MalformedError{
			Path: fmt.Sprintf("[%d].due", index),
			Err:  fmt.Errorf("missing required field"),
		}
	}
	return nil
}

// Save writes tasks to path as a JSON array with 2-space indentation and a
// trailing newline. The data goes to a temp file first and is renamed into
// place, so a failed write leaves the previous file intact.
func Save(path string, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace tasks file: %w", err)
	}
	return nil
}
