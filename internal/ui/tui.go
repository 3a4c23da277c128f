// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rasyadazka/todolist/internal/config"
	"github.com/rasyadazka/todolist/internal/logging"
	"github.com/rasyadazka/todolist/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	refresh time.Duration
}

// WithRefreshInterval overrides the interval between list redraws.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		c.refresh = d
	}
}

// RunTUI starts the interactive task screen over an opened store. Mutations
// made through the screen are recorded in the activity log, which may be nil.
func RunTUI(ctx context.Context, cfg *config.Config, store *todo.Store, activity *logging.ActivityLog, opts ...TUIOption) error {
	c := &tuiConfig{
		refresh: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(cfg, store, activity, c.refresh)
	return runProgram(ctx, model)
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// tuiMode is the input state of the screen. modeList handles single-key
// commands; the other modes read a line (or, for modeClear, one keypress).
type tuiMode int

const (
	modeList tuiMode = iota
	modeAddName
	modeAddDue
	modeRemove
	modeClear
)

type tuiModel struct {
	cfg      *config.Config
	store    *todo.Store
	activity *logging.ActivityLog

	mode        tuiMode
	input       string
	pendingName string

	entries     []todo.Entry
	now         time.Time
	loadErr     error
	status      string
	overdueOnly bool
	showHelp    bool

	tickInterval time.Duration
}

type tickMsg time.Time

func newTUIModel(cfg *config.Config, store *todo.Store, activity *logging.ActivityLog, refresh time.Duration) *tuiModel {
	return &tuiModel{
		cfg:          cfg,
		store:        store,
		activity:     activity,
		tickInterval: refresh,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "a":
			m.enterMode(modeAddName)
			return m, nil
		case "d":
			if m.store.Len() == 0 {
				m.status = "No tasks to remove."
				return m, nil
			}
			m.enterMode(modeRemove)
			return m, nil
		case "c":
			if m.store.Len() == 0 {
				m.status = "No tasks."
				return m, nil
			}
			m.enterMode(modeClear)
			return m, nil
		case "o":
			m.overdueOnly = !m.overdueOnly
			return m, nil
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
	case tickMsg:
		// Display numbers stay frozen while a prompt is open so the
		// number being typed cannot drift underneath the user.
		if m.mode == modeList {
			m.refresh()
		}
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

// updatePrompt handles keys while a prompt is active.
func (m *tuiModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeClear {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "y", "Y":
			m.clearAll()
		default:
			m.leavePrompt("Canceled.")
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.leavePrompt("Canceled.")
	case tea.KeyEnter:
		m.submitPrompt()
	case tea.KeyBackspace:
		if m.input != "" {
			_, size := utf8.DecodeLastRuneInString(m.input)
			m.input = m.input[:len(m.input)-size]
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *tuiModel) enterMode(mode tuiMode) {
	m.mode = mode
	m.input = ""
	m.status = ""
}

func (m *tuiModel) leavePrompt(status string) {
	m.mode = modeList
	m.input = ""
	m.pendingName = ""
	m.status = status
}

// submitPrompt consumes the entered line. Recoverable mistakes (blank name,
// unparsable date, bad number) keep the prompt open for another try.
func (m *tuiModel) submitPrompt() {
	text := strings.TrimSpace(m.input)
	switch m.mode {
	case modeAddName:
		if text == "" {
			m.input = ""
			m.status = "Name cannot be empty."
			return
		}
		m.pendingName = text
		m.mode = modeAddDue
		m.input = ""
		m.status = ""
	case modeAddDue:
		task, err := m.store.Add(m.pendingName, text)
		if err != nil {
			if errors.Is(err, todo.ErrInvalidDue) {
				m.input = ""
				m.status = "Unrecognized date. Use YYYY-MM-DD or YYYY-MM-DD HH:MM."
				return
			}
			m.leavePrompt("Error: " + err.Error())
			return
		}
		_ = m.activity.Added(task.ID, task.Name, task.Due.Format(todo.DueInputLayout))
		m.leavePrompt(fmt.Sprintf("Added %q, due %s.", task.Name, task.Due.Format(todo.DueInputLayout)))
		m.refresh()
	case modeRemove:
		n, err := strconv.Atoi(text)
		if err != nil {
			m.input = ""
			m.status = "Enter a valid number."
			return
		}
		task, err := m.store.RemoveAt(n)
		if err != nil {
			if errors.Is(err, todo.ErrInvalidIndex) {
				m.input = ""
				m.status = "No task with that number."
				return
			}
			m.leavePrompt("Error: " + err.Error())
			return
		}
		_ = m.activity.Removed(task.ID, task.Name, task.Due.Format(todo.DueInputLayout))
		m.leavePrompt(fmt.Sprintf("Removed %q.", task.Name))
		m.refresh()
	}
}

func (m *tuiModel) clearAll() {
	n, err := m.store.Clear(true)
	if err != nil {
		m.leavePrompt("Error: " + err.Error())
		return
	}
	_ = m.activity.Cleared(n)
	m.leavePrompt(fmt.Sprintf("Removed all %d tasks.", n))
	m.refresh()
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	// Show help screen if enabled
	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading tasks file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.overdueOnly {
		b.WriteString("Filter: overdue (o to clear)\n\n")
	}

	writeEntries(&b, m.entries, m.overdueOnly)
	writePrompt(&b, m)
	if m.status != "" {
		b.WriteString(m.status + "\n\n")
	}
	writeConfig(&b, m.cfg, m.store.Path())
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh reloads the store from disk and rebuilds the listing, so edits
// made by other processes show up and overdue markers track the clock.
func (m *tuiModel) refresh() {
	store, err := todo.Open(m.store.Path())
	if err != nil {
		m.loadErr = err
		return
	}
	m.store = store
	m.loadErr = nil
	m.now = time.Now()
	m.entries = store.List(m.now)
}

func writeTitle(b *strings.Builder) {
	title := "todolist"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeEntries(b *strings.Builder, entries []todo.Entry, overdueOnly bool) {
	b.WriteString("Tasks by due date\n\n")
	shown := 0
	for _, e := range entries {
		if overdueOnly && !e.Overdue {
			continue
		}
		b.WriteString("  " + formatEntry(e) + "\n")
		shown++
	}
	if shown == 0 {
		b.WriteString("  No tasks.\n")
	}
	b.WriteString("\n")
}

func writePrompt(b *strings.Builder, m *tuiModel) {
	switch m.mode {
	case modeAddName:
		b.WriteString("Task name: " + m.input + "_\n\n")
	case modeAddDue:
		b.WriteString(fmt.Sprintf("Adding %q.\n", m.pendingName))
		b.WriteString("Due (2026-02-05 14:30 or 2026-02-05): " + m.input + "_\n\n")
	case modeRemove:
		b.WriteString("Number of the task to remove: " + m.input + "_\n\n")
	case modeClear:
		b.WriteString(fmt.Sprintf("Remove all %d tasks? (y/N)\n\n", m.store.Len()))
	}
}

func writeConfig(b *strings.Builder, cfg *config.Config, tasksPath string) {
	b.WriteString("Configuration\n\n")
	b.WriteString(fmt.Sprintf("  Tasks File: %s\n", tasksPath))
	b.WriteString(fmt.Sprintf("  Log Dir:    %s\n\n", cfg.LogDir))
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  a            Add a task\n")
	b.WriteString("  d            Remove a task by number\n")
	b.WriteString("  c            Remove all tasks\n")
	b.WriteString("  o            Toggle the overdue filter\n")
	b.WriteString("  r, F5        Refresh now\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  esc          Cancel a prompt\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s\n", interval))
}

func formatEntry(e todo.Entry) string {
	line := fmt.Sprintf("%d. %s - due: %s", e.Index, e.Task.Name, e.Task.Due.Format(todo.DueInputLayout))
	if e.Overdue {
		line += " (overdue)"
	}
	return line
}

// IsTTY returns true if stdout is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
