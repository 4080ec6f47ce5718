package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a content file into a Holder when it changes on disk.
// The parent directory is watched so editors that save by rename are seen.
type Watcher struct {
	path     string
	holder   *Holder
	logger   *zap.Logger
	debounce time.Duration
	onReload func(*Site)
}

// NewWatcher watches path. onReload, when set, runs after each successful
// reload.
func NewWatcher(path string, holder *Holder, logger *zap.Logger, onReload func(*Site)) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		holder:   holder,
		logger:   logger,
		debounce: 200 * time.Millisecond,
		onReload: onReload,
	}
}

// Run blocks until ctx is done. A file that fails to parse is logged and the
// previous site stays live.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("Watching content", zap.String("path", w.path))

	// Stopped until the first relevant event arms it.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Content changed", zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Content watcher error", zap.Error(err))

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	site, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Content reload failed, keeping previous version", zap.Error(err))
		return
	}
	w.holder.Set(site)
	w.logger.Info("Content reloaded",
		zap.Int("projects", len(site.Projects)),
		zap.Uint64("version", w.holder.Version()))
	if w.onReload != nil {
		w.onReload(site)
	}
}
