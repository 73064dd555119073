package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func isFsnotifySupported() bool {
	switch runtime.GOOS {
	case "linux", "darwin", "windows", "freebsd", "netbsd", "openbsd":
		return true
	default:
		return false
	}
}

func TestExternalChangeWatcher_DetectsWrite(t *testing.T) {
	if !isFsnotifySupported() {
		t.Skip("fsnotify not supported on this platform")
	}

	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "doc.txt")
	if err := os.WriteFile(tempFile, []byte("initial"), 0o644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	w, err := NewExternalChangeWatcherWithDebounce(tempFile, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewExternalChangeWatcherWithDebounce() failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(tempFile, []byte("changed externally"), 0o644); err != nil {
		t.Fatalf("failed to rewrite temp file: %v", err)
	}

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive external change notification in time")
	}
}

func TestExternalChangeWatcher_MissingFile(t *testing.T) {
	_, err := NewExternalChangeWatcher("/does/not/exist")
	if err == nil {
		t.Errorf("NewExternalChangeWatcher() on missing file = nil error, want error")
	}
}
