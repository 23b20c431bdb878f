// Package watch captures text files dropped into a folder as scraps. It is
// the desktop stand-in for clipboard capture: every *.txt or *.md file that
// appears is captured once and renamed with a ".captured" suffix.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrijs2005/scrapsync/internal/logging"
)

// CapturedSuffix is appended to a file once it has been captured.
const CapturedSuffix = ".captured"

// DefaultDebounce is how long a file must stay quiet before it is read.
const DefaultDebounce = 500 * time.Millisecond

// CaptureFunc stores raw as a new scrap.
type CaptureFunc func(ctx context.Context, raw, note string) error

type Watcher struct {
	dir      string
	capture  CaptureFunc
	debounce time.Duration
	log      logging.Logger
}

func New(dir string, capture CaptureFunc, debounce time.Duration, log logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{dir: dir, capture: capture, debounce: debounce, log: log.With("dir", dir)}
}

// Eligible reports whether name is a file the watcher captures.
func Eligible(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// ScanOnce captures every eligible file already in the folder and returns
// how many were captured.
func (w *Watcher) ScanOnce(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read drop folder: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !Eligible(e.Name()) {
			continue
		}
		ok, err := w.captureFile(ctx, filepath.Join(w.dir, e.Name()))
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Run sweeps the folder, then captures new files until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	if _, err := w.ScanOnce(ctx); err != nil {
		return err
	}
	w.log.Info(ctx, "watching drop folder")

	ready := make(chan string, 16)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !Eligible(ev.Name) {
				continue
			}
			path := ev.Name
			if t, ok := timers[path]; ok {
				t.Reset(w.debounce)
				continue
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			delete(timers, path)
			if _, err := w.captureFile(ctx, path); err != nil {
				w.log.Error(ctx, "capture failed", "path", path, "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "watcher error", "error", err)
		}
	}
}

// captureFile captures path and renames it. It reports false for files that
// vanished or are blank; blank files are left in place.
func (w *Watcher) captureFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		w.log.Debug(ctx, "skipping blank file", "path", path)
		return false, nil
	}

	if err := w.capture(ctx, string(data), ""); err != nil {
		return false, err
	}
	if err := os.Rename(path, path+CapturedSuffix); err != nil {
		return true, fmt.Errorf("mark %s captured: %w", path, err)
	}
	w.log.Info(ctx, "file captured", "path", path)
	return true, nil
}
