// Package inbox ingests documents dropped into a directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	processedDir = "processed"
	failedDir    = "failed"

	DefaultSettleDelay = 500 * time.Millisecond
)

// Handler ingests one file. The watcher moves the file out of the inbox after
// the handler returns.
type Handler func(ctx context.Context, path string) error

type Options struct {
	Extensions  []string
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Watcher waits for writes to settle before handing a file over, so partially
// copied uploads are not picked up.
type Watcher struct {
	dir        string
	extensions []string
	settle     time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

func New(dir string, opts Options) (*Watcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("inbox dir is required")
	}
	for _, sub := range []string{"", processedDir, failedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create inbox dir: %w", err)
		}
	}
	w := &Watcher{
		dir:        dir,
		extensions: normalizeExtensions(opts.Extensions),
		settle:     opts.SettleDelay,
		logger:     opts.Logger,
		pending:    make(map[string]*time.Timer),
	}
	if w.settle <= 0 {
		w.settle = DefaultSettleDelay
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Run handles files already in the inbox, then watches for new ones until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			w.schedule(ctx, filepath.Join(w.dir, entry.Name()), handle)
		}
	}

	defer w.wg.Wait()
	defer w.cancelPending()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(ctx, event.Name, handle)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox_watch_error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string, handle Handler) {
	if !w.accepts(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.process(ctx, path, handle)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string, handle Handler) {
	if ctx.Err() != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	target := processedDir
	if err := handle(ctx, path); err != nil {
		target = failedDir
		w.logger.Error("inbox_file_failed", "path", path, "error", err)
	} else {
		w.logger.Info("inbox_file_ingested", "path", path)
	}

	dest := filepath.Join(w.dir, target, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(path)))
	if err := os.Rename(path, dest); err != nil {
		w.logger.Error("inbox_move_failed", "path", path, "error", err)
	}
}

func (w *Watcher) accepts(path string) bool {
	if filepath.Dir(path) != filepath.Clean(w.dir) {
		return false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(name)))
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
