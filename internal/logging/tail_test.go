package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestFindLatestLog tests finding the latest log file.
func TestFindLatestLog(t *testing.T) {
	t.Run("finds latest log in directory", func(t *testing.T) {
		logDir := t.TempDir()

		// Create multiple log files with different timestamps
		files := []string{"activity-20260201.jsonl", "activity-20260202.jsonl", "activity-20260203.jsonl"}
		for _, f := range files {
			path := filepath.Join(logDir, f)
			if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
				t.Fatal(err)
			}
			// Add a small delay to ensure different modification times
			time.Sleep(10 * time.Millisecond)
		}

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.HasSuffix(latest, "activity-20260203.jsonl") {
			t.Errorf("latest: got %s, want the last file written", latest)
		}
	})

	t.Run("ignores non-jsonl files and directories", func(t *testing.T) {
		logDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(logDir, "notes.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Mkdir(filepath.Join(logDir, "sub.jsonl"), 0755); err != nil {
			t.Fatal(err)
		}

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if latest != "" {
			t.Errorf("latest: got %s, want empty", latest)
		}
	})

	t.Run("missing directory returns empty path", func(t *testing.T) {
		latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if latest != "" {
			t.Errorf("latest: got %s, want empty", latest)
		}
	})
}

// TestTailLog tests tailing log files.
func TestTailLog(t *testing.T) {
	t.Run("dumps whole file without n", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "activity.jsonl")
		content := "line one\nline two\nline three\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, path, 0, false); err != nil {
			t.Fatalf("TailLog failed: %v", err)
		}
		if buf.String() != content {
			t.Errorf("output: got %q, want %q", buf.String(), content)
		}
	})

	t.Run("limits output to roughly last n lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "activity.jsonl")
		var content strings.Builder
		for i := 1; i <= 200; i++ {
			fmt.Fprintf(&content, "{\"action\":\"add\",\"line\":%d,\"padding\":\"%s\"}\n", i, strings.Repeat("x", 80))
		}
		if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, path, 5, false); err != nil {
			t.Fatalf("TailLog failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `"line":200`) {
			t.Error("output should include the final line")
		}
		if strings.Contains(output, `"line":1,`) {
			t.Error("output should not start at the beginning of the file")
		}
		// Output starts on a line boundary
		if !strings.HasPrefix(output, "{") {
			t.Errorf("output should start on a full line, got %q", output[:min(len(output), 20)])
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.jsonl"), 0, false)
		if err == nil {
			t.Fatal("expected error for missing file, got nil")
		}
	})

	t.Run("follow stops when context is canceled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "activity.jsonl")
		if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		var buf bytes.Buffer
		done := make(chan error, 1)
		go func() {
			done <- TailLog(ctx, &buf, path, 0, true)
		}()

		// Let the follower copy the existing content, then append more
		time.Sleep(250 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("appended\n"); err != nil {
			t.Fatal(err)
		}
		f.Close()
		time.Sleep(250 * time.Millisecond)

		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("TailLog error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("TailLog did not stop after cancel")
		}

		output := buf.String()
		if !strings.Contains(output, "existing") {
			t.Error("output missing existing content")
		}
		if !strings.Contains(output, "appended") {
			t.Error("output missing appended content")
		}
	})
}
