package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FindLatestLog finds the latest JSONL log file in a directory.
func FindLatestLog(logDir string) (string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read log dir: %w", err)
	}

	var latest string
	var latestTime time.Time

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = filepath.Join(logDir, name)
		}
	}

	return latest, nil
}

// TailLog tails a log file to a writer, optionally following until the
// context is canceled.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	// If n > 0, seek to show only last n lines
	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(ctx, w, file)
	}

	// Just dump the rest of the file
	_, err = io.Copy(w, file)
	return err
}

// tailSeek seeks to a position that shows approximately the last n lines.
func tailSeek(file *os.File, n int) error {
	const avgLineLength = 100

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	size := stat.Size()
	if size < avgLineLength*int64(n) {
		// File is small enough, just read from start
		_, err = file.Seek(0, io.SeekStart)
		return err
	}

	// Seek back from end
	offset := size - int64(n*avgLineLength)
	if offset < 0 {
		offset = 0
	}
	_, err = file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}

	// Discard partial first line
	buf := make([]byte, 1)
	_, err = file.Read(buf)
	if err != nil {
		return err
	}
	for {
		if buf[0] == '\n' {
			break
		}
		_, err := file.Read(buf)
		if err != nil {
			break
		}
	}

	return nil
}

// tailFollow follows a file like tail -f.
func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	// First, copy existing content
	if _, err := io.Copy(w, file); err != nil {
		return err
	}

	// Then poll for new content
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}

		if _, err := io.Copy(w, file); err != nil {
			return err
		}
	}
}
