package skills

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
)

// DefaultDebounce is the quiet period after the last change before a watcher fires
const DefaultDebounce = 300 * time.Millisecond

// ChangeEvent reports that the skills tree changed
type ChangeEvent struct {
	Path string // Last path that changed within the debounce window
	Op   fsnotify.Op
	Time time.Time
}

// Watcher emits a ChangeEvent whenever a markdown file or directory under the
// skills root is created, written, removed or renamed. Bursts of changes are
// collapsed into one event.
type Watcher struct {
	root     string
	debounce time.Duration
	events   chan ChangeEvent
}

// NewWatcher creates a watcher for the given root
func NewWatcher(root string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		events:   make(chan ChangeEvent, 1),
	}
}

// Events returns the channel change notifications are delivered on.
// It is closed once the watcher stops.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Start registers the root and all its subdirectories and processes
// notifications until ctx is cancelled. A symlinked root is resolved first,
// matching what the loader walks.
func (w *Watcher) Start(ctx context.Context) error {
	root, err := resolveRoot(w.root)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}

	if err := w.addTree(ctx, fsw, root); err != nil {
		fsw.Close()
		return err
	}

	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) addTree(ctx context.Context, fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		logger.G(ctx).WithField("directory", path).Debug("adding directory to watcher")
		return errors.Wrapf(fsw.Add(path), "failed to watch %s", path)
	})
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer func() {
		fsw.Close()
		close(w.events)
	}()

	var (
		pending *ChangeEvent
		timer   *time.Timer
		timerC  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			createdDir := false
			if ev.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					createdDir = true
					if err := w.addTree(ctx, fsw, ev.Name); err != nil {
						logger.G(ctx).WithError(err).WithField("directory", ev.Name).Warn("failed to watch new directory")
					}
				}
			}

			if !createdDir && !isRelevantChange(ev) {
				continue
			}

			pending = &ChangeEvent{Path: ev.Name, Op: ev.Op, Time: time.Now()}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.G(ctx).WithError(err).Warn("skills watcher error")

		case <-timerC:
			timerC = nil
			if pending == nil {
				continue
			}
			select {
			case w.events <- *pending:
			case <-ctx.Done():
				return
			}
			pending = nil
		}
	}
}

// isRelevantChange reports whether the event can affect the loaded catalog.
// Removals and renames are always relevant since the removed path may have
// been a directory.
func isRelevantChange(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return true
	}
	return strings.HasSuffix(ev.Name, markdownExt)
}
