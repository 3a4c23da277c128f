package todo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "date and time",
			input: "2026-02-05 14:30",
			want:  time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "date only defaults to end of day",
			input: "2026-02-05",
			want:  time.Date(2026, 2, 5, 23, 59, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "midnight",
			input: "2026-12-31 00:00",
			want:  time.Date(2026, 12, 31, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{name: "empty", input: "", ok: false},
		{name: "wrong separator", input: "2026/02/05", ok: false},
		{name: "day first", input: "05-02-2026", ok: false},
		{name: "seconds not accepted", input: "2026-02-05 14:30:00", ok: false},
		{name: "iso T separator not accepted", input: "2026-02-05T14:30", ok: false},
		{name: "leading space", input: " 2026-02-05", ok: false},
		{name: "free text", input: "tomorrow", ok: false},
		{name: "time only", input: "14:30", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDueDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDueDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDueDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDueTimeJSON(t *testing.T) {
	t.Run("marshal uses persisted layout", func(t *testing.T) {
		d := DueTime{time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)}
		data, err := d.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON failed: %v", err)
		}
		if got, want := string(data), `"2026-02-05T14:30:00"`; got != want {
			t.Errorf("MarshalJSON = %s, want %s", got, want)
		}
	})

	t.Run("unmarshal accepted forms", func(t *testing.T) {
		tests := []struct {
			input string
			want  time.Time
		}{
			{`"2026-02-05T14:30:00"`, time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)},
			{`"2026-02-05T14:30"`, time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)},
			{`"2026-02-05T14:30:00Z"`, time.Date(2026, 2, 5, 14, 30, 0, 0, time.UTC)},
		}
		for _, tt := range tests {
			var d DueTime
			if err := d.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) failed: %v", tt.input, err)
			}
			if !d.Equal(tt.want) {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, d.Time, tt.want)
			}
		}
	})

	t.Run("unmarshal rejects garbage", func(t *testing.T) {
		for _, input := range []string{`"soon"`, `""`, `"2026-02-05"`, `42`, `null`} {
			var d DueTime
			if err := d.UnmarshalJSON([]byte(input)); err == nil {
				t.Errorf("UnmarshalJSON(%s) should fail", input)
			}
		}
	})
}

func TestLoadMissingFile(t *testing.T) {
	tasks, err := Load(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Tasks count: got %d, want 0", len(tasks))
	}
}

func TestLoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tasks.json")

	original := []Task{
		{
			ID:   "a2f1c9d4-0000-4000-8000-000000000001",
			Name: "Write report",
			Due:  DueTime{time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)},
		},
		{
			ID:   "a2f1c9d4-0000-4000-8000-000000000002",
			Name: "Pay rent",
			Due:  DueTime{time.Date(2026, 2, 1, 23, 59, 0, 0, time.Local)},
		},
	}

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != len(original) {
		t.Fatalf("Tasks count: got %d, want %d", len(loaded), len(original))
	}
	for i := range original {
		if loaded[i].ID != original[i].ID {
			t.Errorf("Task %d ID: got %s, want %s", i, loaded[i].ID, original[i].ID)
		}
		if loaded[i].Name != original[i].Name {
			t.Errorf("Task %d Name: got %s, want %s", i, loaded[i].Name, original[i].Name)
		}
		if !loaded[i].Due.Equal(original[i].Due.Time) {
			t.Errorf("Task %d Due: got %v, want %v", i, loaded[i].Due.Time, original[i].Due.Time)
		}
	}

	// Insertion order must survive, not due-date order
	if loaded[0].Name != "Write report" {
		t.Errorf("first entry: got %s, want Write report", loaded[0].Name)
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{
			name:    "corrupt json",
			content: `[{"name": "x"`,
		},
		{
			name:    "object not array",
			content: `{"tasks": []}`,
		},
		{
			name:     "missing name",
			content:  `[{"due": "2026-02-05T10:00:00"}]`,
			wantPath: "[0].name",
		},
		{
			name:     "blank name",
			content:  `[{"name": "   ", "due": "2026-02-05T10:00:00"}]`,
			wantPath: "[0].name",
		},
		{
			name:     "missing due",
			content:  `[{"name": "Write report"}]`,
			wantPath: "[0].due",
		},
		{
			name:     "null due",
			content:  `[{"name": "Write report", "due": null}]`,
			wantPath: "[0]",
		},
		{
			name:     "unparsable due",
			content:  `[{"name": "Write report", "due": "soon"}]`,
			wantPath: "[0]",
		},
		{
			name:     "second entry bad",
			content:  `[{"name": "ok", "due": "2026-02-05T10:00:00"}, {"name": "bad"}]`,
			wantPath: "[1].due",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load should fail")
			}
			var malformed *MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("error type is %T, want *MalformedError", err)
			}
			if tt.wantPath != "" && malformed.Path != tt.wantPath {
				t.Errorf("Path: got %q, want %q", malformed.Path, tt.wantPath)
			}
		})
	}
}

func TestSaveFormat(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tasks.json")

	tasks := []Task{
		{ID: "id-1", Name: "Write report", Due: DueTime{time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)}},
	}
	if err := Save(path, tasks); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "[\n  {") {
		t.Errorf("expected 2-space indented array, got %q", content[:min(len(content), 10)])
	}
	if !strings.HasSuffix(content, "]\n") {
		t.Error("expected trailing newline after closing bracket")
	}

	// The temp file must not linger after a successful save
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestSaveEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	if err := Save(path, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got := string(data); got != "[]\n" {
		t.Errorf("empty save: got %q, want %q", got, "[]\n")
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	first := []Task{
		{ID: "id-1", Name: "First", Due: DueTime{time.Date(2026, 1, 1, 10, 0, 0, 0, time.Local)}},
		{ID: "id-2", Name: "Second", Due: DueTime{time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local)}},
	}
	if err := Save(path, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := []Task{first[1]}
	if err := Save(path, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Second" {
		t.Errorf("loaded = %+v, want only Second", loaded)
	}
}

func TestTaskIsZero(t *testing.T) {
	task := Task{}
	if !task.IsZero() {
		t.Error("Empty task should be zero")
	}

	task.Name = "Write report"
	if task.IsZero() {
		t.Error("Task with name should not be zero")
	}
}
