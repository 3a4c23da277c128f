package todo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestStoreAddAndReopen(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Add("Write report", "2026-02-05 14:30")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if first.ID == "" {
		t.Error("added task should have an id")
	}
	second, err := s.Add("Pay rent", "2026-02-01")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("ids should be unique")
	}

	reopened, err := Open(s.Path())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", reopened.Len())
	}

	tasks := reopened.Tasks()
	if tasks[0].ID != first.ID || tasks[0].Name != "Write report" {
		t.Errorf("first task: got %+v", tasks[0])
	}
	if !tasks[0].Due.Equal(time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)) {
		t.Errorf("first due: got %v", tasks[0].Due.Time)
	}
	// Date-only input is due at end of day
	if !tasks[1].Due.Equal(time.Date(2026, 2, 1, 23, 59, 0, 0, time.Local)) {
		t.Errorf("second due: got %v, want 2026-02-01 23:59 local", tasks[1].Due.Time)
	}
}

func TestStoreAddTrimsName(t *testing.T) {
	s := newTestStore(t)

	task, err := s.Add("  Write report  ", "2026-02-05 14:30")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if task.Name != "Write report" {
		t.Errorf("Name: got %q, want %q", task.Name, "Write report")
	}
}

func TestStoreAddValidation(t *testing.T) {
	tests := []struct {
		name    string
		task    string
		due     string
		wantErr error
	}{
		{"empty name", "", "2026-02-05 14:30", ErrEmptyName},
		{"whitespace name", "   ", "2026-02-05 14:30", ErrEmptyName},
		{"empty due", "Write report", "", ErrInvalidDue},
		{"bad due", "Write report", "next tuesday", ErrInvalidDue},
		{"due with seconds", "Write report", "2026-02-05 14:30:00", ErrInvalidDue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			_, err := s.Add(tt.task, tt.due)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Add error = %v, want %v", err, tt.wantErr)
			}
			if s.Len() != 0 {
				t.Errorf("store mutated by rejected Add: Len = %d", s.Len())
			}
			// Nothing valid was added, so nothing should have been written
			if _, statErr := os.Stat(s.Path()); !os.IsNotExist(statErr) {
				t.Errorf("rejected Add wrote the tasks file: %v", statErr)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := newTestStore(t)
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
}

func TestOpenAssignsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	legacy := `[
  {"name": "Write report", "due": "2026-02-05T14:30:00"},
  {"name": "Pay rent", "due": "2026-02-01T23:59:00"}
]
`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tasks := s.Tasks()
	if tasks[0].ID == "" || tasks[1].ID == "" {
		t.Fatal("legacy entries should be assigned ids")
	}
	if tasks[0].ID == tasks[1].ID {
		t.Error("assigned ids should be unique")
	}
}

func TestStoreList(t *testing.T) {
	s := newTestStore(t)

	// Added out of due order on purpose
	if _, err := s.Add("Third", "2026-03-01 09:00"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("First", "2026-01-15 09:00"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("Second", "2026-02-01 09:00"); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local)
	entries := s.List(now)
	if len(entries) != 3 {
		t.Fatalf("entries: got %d, want 3", len(entries))
	}

	wantOrder := []string{"First", "Second", "Third"}
	for i, want := range wantOrder {
		if entries[i].Task.Name != want {
			t.Errorf("entry %d: got %s, want %s", i, entries[i].Task.Name, want)
		}
		if entries[i].Index != i+1 {
			t.Errorf("entry %d index: got %d, want %d", i, entries[i].Index, i+1)
		}
	}

	// First is past now, Second is due exactly now, Third is ahead
	if !entries[0].Overdue {
		t.Error("First should be overdue")
	}
	if entries[1].Overdue {
		t.Error("task due exactly now must not be overdue")
	}
	if entries[2].Overdue {
		t.Error("Third should not be overdue")
	}

	// The underlying collection keeps insertion order
	if tasks := s.Tasks(); tasks[0].Name != "Third" {
		t.Errorf("insertion order lost: got %s first", tasks[0].Name)
	}
}

func TestListStableForEqualDue(t *testing.T) {
	due := DueTime{time.Date(2026, 2, 5, 14, 30, 0, 0, time.Local)}
	tasks := []Task{
		{ID: "id-a", Name: "Alpha", Due: due},
		{ID: "id-b", Name: "Beta", Due: due},
		{ID: "id-c", Name: "Gamma", Due: DueTime{due.Add(-time.Hour)}},
	}

	entries := List(tasks, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local))
	got := []string{entries[0].Task.Name, entries[1].Task.Name, entries[2].Task.Name}
	want := []string{"Gamma", "Alpha", "Beta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}
}

func TestStoreRemoveAt(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Add("Later", "2026-03-01 09:00"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("Sooner", "2026-01-15 09:00"); err != nil {
		t.Fatal(err)
	}

	// Index 1 is the earliest due, not the first added
	removed, err := s.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}
	if removed.Name != "Sooner" {
		t.Errorf("removed: got %s, want Sooner", removed.Name)
	}
	if s.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", s.Len())
	}

	// Removal persists
	reopened, err := Open(s.Path())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if reopened.Len() != 1 || reopened.Tasks()[0].Name != "Later" {
		t.Errorf("persisted tasks: %+v", reopened.Tasks())
	}
}

func TestStoreRemoveAtOutOfRange(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add("Only", "2026-03-01 09:00"); err != nil {
		t.Fatal(err)
	}

	for _, index := range []int{0, -1, 2} {
		_, err := s.RemoveAt(index)
		if !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("RemoveAt(%d) error = %v, want ErrInvalidIndex", index, err)
		}
	}
	if s.Len() != 1 {
		t.Errorf("store mutated by rejected RemoveAt: Len = %d", s.Len())
	}
}

func TestStoreRemoveAtDuplicates(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Add("Write report", "2026-02-05 14:30")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Add("Write report", "2026-02-05 14:30")
	if err != nil {
		t.Fatal(err)
	}

	// Equal dues keep insertion order, so index 1 is the first added
	removed, err := s.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}
	if removed.ID != first.ID {
		t.Errorf("removed id: got %s, want %s", removed.ID, first.ID)
	}
	if remaining := s.Tasks(); len(remaining) != 1 || remaining[0].ID != second.ID {
		t.Errorf("remaining: %+v, want only the second duplicate", remaining)
	}
}

func TestStoreRemoveByID(t *testing.T) {
	s := newTestStore(t)

	task, err := s.Add("Write report", "2026-02-05 14:30")
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.Remove(task.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed.ID != task.ID {
		t.Errorf("removed id: got %s, want %s", removed.ID, task.ID)
	}

	_, err = s.Remove(task.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove of missing id error = %v, want ErrNotFound", err)
	}
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add("One", "2026-02-05 14:30"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add("Two", "2026-02-06 14:30"); err != nil {
		t.Fatal(err)
	}

	t.Run("unconfirmed is a no-op", func(t *testing.T) {
		n, err := s.Clear(false)
		if err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if n != 0 {
			t.Errorf("removed count: got %d, want 0", n)
		}
		if s.Len() != 2 {
			t.Errorf("Len: got %d, want 2", s.Len())
		}
	})

	t.Run("confirmed empties and persists", func(t *testing.T) {
		n, err := s.Clear(true)
		if err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if n != 2 {
			t.Errorf("removed count: got %d, want 2", n)
		}
		if s.Len() != 0 {
			t.Errorf("Len: got %d, want 0", s.Len())
		}

		data, err := os.ReadFile(s.Path())
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if got := string(data); got != "[]\n" {
			t.Errorf("file content: got %q, want %q", got, "[]\n")
		}
	})
}

func TestStoreTasksReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add("Write report", "2026-02-05 14:30"); err != nil {
		t.Fatal(err)
	}

	tasks := s.Tasks()
	tasks[0].Name = "mutated"

	if s.Tasks()[0].Name != "Write report" {
		t.Error("Tasks() should return a copy")
	}
}
