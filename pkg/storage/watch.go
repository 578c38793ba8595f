package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a path must stay quiet after a filesystem event
// before the change is reported.
const WatchDebounce = 100 * time.Millisecond

// Watch reports files under prefix that are created, written, renamed into
// place or removed, by their storage path. Bursts of events for one path are
// coalesced. Watch blocks until ctx is done.
func (s *LocalStorage) Watch(ctx context.Context, prefix string, onChange func(path string)) error {
	dir := s.resolve(prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return watchLoop(ctx, prefix, watcher.Events, watcher.Errors, onChange)
}

// watchLoop debounces events into onChange until ctx is done or a channel
// closes. Watcher errors, such as a queue overflow, are logged and the loop
// keeps going.
func watchLoop(ctx context.Context, prefix string, events <-chan fsnotify.Event, errs <-chan error, onChange func(path string)) error {
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			path := strings.TrimPrefix(filepath.ToSlash(filepath.Join(prefix, name)), "/")
			mu.Lock()
			if t, ok := timers[path]; ok {
				t.Reset(WatchDebounce)
			} else {
				timers[path] = time.AfterFunc(WatchDebounce, func() {
					mu.Lock()
					delete(timers, path)
					mu.Unlock()
					if ctx.Err() == nil {
						onChange(path)
					}
				})
			}
			mu.Unlock()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "fsnotify error", "prefix", prefix, "error", err)
		}
	}
}
