package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/graphview/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	// ChangeTypeWrite means the document was created or rewritten
	ChangeTypeWrite ChangeType = iota
	// ChangeTypeRemove means the document is gone (or was renamed away)
	ChangeTypeRemove
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeWrite:
		return "write"
	case ChangeTypeRemove:
		return "remove"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchWindow groups the burst of events a single save produces
const batchWindow = 100 * time.Millisecond

// FileWatcher watches graph documents for changes.
//
// It watches the containing directories rather than the files: editors
// often save by writing a temp file and renaming it over the original,
// which drops a watch placed on the file itself.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool // cleaned absolute paths
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the given files
func NewFileWatcher(paths ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]bool),
		events:  make(chan ChangeEvent, 100),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return fw, nil
}

// Start begins watching for file changes. Events stop and the channel is
// closed when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) {
	for f := range fw.files {
		logging.Info("watching graph document", "path", f)
	}
	go fw.processEvents(ctx)
}

// processEvents batches file system events by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var written, removed []string

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	send := func(t ChangeType, paths []string) {
		if len(paths) == 0 {
			return
		}
		select {
		case fw.events <- ChangeEvent{Type: t, Paths: paths, Timestamp: time.Now()}:
		case <-ctx.Done():
		}
	}

	flush := func() {
		send(ChangeTypeWrite, written)
		send(ChangeTypeRemove, removed)
		written, removed = nil, nil
	}

	defer func() {
		fw.watcher.Close()
		close(fw.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			name, err := filepath.Abs(event.Name)
			if err != nil || !fw.files[name] {
				continue
			}
			logging.Trace("file event", "path", name, "op", event.Op.String())

			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				written = append(written, name)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				removed = append(removed, name)
			default:
				continue
			}
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
