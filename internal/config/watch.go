package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vaulttec/vault131/internal/log"
)

// DefaultWatchDebounce coalesces the burst of events an editor save produces.
const DefaultWatchDebounce = 250 * time.Millisecond

// WatchFile calls onChange after path is written, created or replaced. The
// parent directory is watched because editors often save by renaming a
// temp file over the original. onChange runs on the watcher goroutine, at
// most once per debounce window. The returned stop function is safe to call
// once.
func WatchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) (stop func() error, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	done := make(chan struct{})
	log.SafeGo(log.CatConfig, "config.watch", func() {
		defer close(done)

		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				log.Debug(log.CatConfig, "Watched file changed", "path", abs)
				onChange()

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn(log.CatConfig, "File watch error", "path", abs, "error", err)
			}
		}
	})

	return func() error {
		err := w.Close()
		<-done
		return err
	}, nil
}
