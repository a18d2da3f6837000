package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string, handle Handler) context.CancelFunc {
	t.Helper()
	w, err := New(dir, Options{Extensions: []string{"txt", ".PDF"}, SettleDelay: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx, handle); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for inbox handler")
		return ""
	}
}

func TestWatcherHandlesExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	seen := make(chan string, 4)
	stop := startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- filepath.Base(path)
		return nil
	})
	defer stop()

	if got := waitFor(t, seen); got != "existing.txt" {
		t.Fatalf("expected existing.txt, got %s", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "skip.exe"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "new.pdf"), []byte("b"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := waitFor(t, seen); got != "new.pdf" {
		t.Fatalf("expected new.pdf, got %s", got)
	}

	stop()
	if _, err := os.Stat(filepath.Join(dir, "skip.exe")); err != nil {
		t.Fatalf("unsupported files must stay in the inbox: %v", err)
	}
	processed, _ := os.ReadDir(filepath.Join(dir, processedDir))
	if len(processed) != 2 {
		t.Fatalf("expected 2 processed files, got %d", len(processed))
	}
}

func TestWatcherMovesFailedFiles(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 1)
	stop := startWatcher(t, dir, func(_ context.Context, path string) error {
		seen <- path
		return errors.New("extract failed")
	})

	if err := os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, seen)
	stop()

	failed, _ := os.ReadDir(filepath.Join(dir, failedDir))
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed file, got %d", len(failed))
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(" ", Options{}); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
