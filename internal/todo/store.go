package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store owns an in-memory task list bound to its backing file. Every
// mutation stages the change, saves, and only then commits it, so the file
// always reflects the last successful operation and a failed save reports
// an error without leaving memory and disk out of step.
type Store struct {
	path  string
	tasks []Task
}

// Open loads the tasks file at path. A missing file yields an empty store.
// Entries written by older tools without an id are assigned one; the ids
// reach disk with the next mutation.
func Open(path string) (*Store, error) {
	tasks, err := Load(path)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.New().String()
		}
	}
	return &Store{path: path, tasks: tasks}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the tasks in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Add validates name and dueText, appends a new task with a fresh id, and
// saves. An empty name (after trimming) or an unparsable due date leaves
// the store untouched.
func (s *Store) Add(name, dueText string) (Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Task{}, ErrEmptyName
	}
	due, ok := ParseDueDate(dueText)
	if !ok {
		return Task{}, fmt.Errorf("%q: %w", dueText, ErrInvalidDue)
	}

	task := Task{
		ID:   uuid.New().String(),
		Name: name,
		Due:  DueTime{due},
	}
	next := append(s.Tasks(), task)
	if err := Save(s.path, next); err != nil {
		return Task{}, err
	}
	s.tasks = next
	return task, nil
}

// RemoveAt removes the task at the given 1-based position in the due-date
// sorted view and saves. The position is resolved to the task's id before
// anything is removed, so duplicate name/due pairs stay unambiguous. An
// out-of-range position leaves the store untouched.
func (s *Store) RemoveAt(index int) (Task, error) {
	sorted := SortByDue(s.tasks)
	if index < 1 || index > len(sorted) {
		return Task{}, fmt.Errorf("%d: %w", index, ErrInvalidIndex)
	}
	return s.Remove(sorted[index-1].ID)
}

// Remove removes the task with the given id and saves.
func (s *Store) Remove(id string) (Task, error) {
	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		next := make([]Task, 0, len(s.tasks)-1)
		next = append(next, s.tasks[:i]...)
		next = append(next, s.tasks[i+1:]...)
		if err := Save(s.path, next); err != nil {
			return Task{}, err
		}
		s.tasks = next
		return t, nil
	}
	return Task{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Clear removes every task when confirmed and saves the empty list. An
// unconfirmed call is a no-op. Returns the number of tasks removed.
func (s *Store) Clear(confirmed bool) (int, error) {
	if !confirmed {
		return 0, nil
	}
	n := len(s.tasks)
	if err := Save(s.path, nil); err != nil {
		return 0, err
	}
	s.tasks = nil
	return n, nil
}

// List returns the numbered due-date view of the store's tasks as of now.
func (s *Store) List(now time.Time) []Entry {
	return List(s.tasks, now)
}

// Entry is one row of the numbered listing.
type Entry struct {
	Index   int // 1-based position in the sorted view
	Task    Task
	Overdue bool
}

// List builds the numbered due-date view of tasks as of now. A task is
// overdue only when its due time is strictly before now; a task due
// exactly at now is not overdue.
func List(tasks []Task, now time.Time) []Entry {
	sorted := SortByDue(tasks)
	entries := make([]Entry, len(sorted))
	for i, t := range sorted {
		entries[i] = Entry{
			Index:   i + 1,
			Task:    t,
			Overdue: t.Due.Before(now),
		}
	}
	return entries
}

// SortByDue returns the tasks ordered by due date, soonest first. The sort
// is stable, so tasks sharing a due date keep their insertion order.
func SortByDue(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Due.Before(sorted[j].Due.Time)
	})
	return sorted
}
