package watcher

import (
	"context"
	"time"

	"github.com/ritzau/graphview/pkg/loader"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/loop"
)

// Sink receives reload events; *loop.Loop is one
type Sink interface {
	Post(ctx context.Context, ev loop.Event) error
}

// ChangeAnalysis describes what a change means for the loaded graph
type ChangeAnalysis struct {
	NeedReload   bool
	Removed      bool
	ChangedFiles []string
}

// AnalyzeChanges decides whether a change event requires a reload. A
// removed document keeps the current graph on screen.
func AnalyzeChanges(event ChangeEvent) ChangeAnalysis {
	return ChangeAnalysis{
		NeedReload:   event.Type == ChangeTypeWrite,
		Removed:      event.Type == ChangeTypeRemove,
		ChangedFiles: event.Paths,
	}
}

// Watch reloads path into sink whenever it changes, until ctx is done
func Watch(ctx context.Context, path string, sink Sink) error {
	fw, err := NewFileWatcher(path)
	if err != nil {
		return err
	}
	fw.Start(ctx)

	d := NewDebouncer(fw.Events(), 200*time.Millisecond, 2*time.Second)
	d.Start(ctx)

	go func() {
		for event := range d.Output() {
			analysis := AnalyzeChanges(event)
			if analysis.Removed {
				logging.Warn("graph document removed, keeping current graph", "path", path)
				continue
			}
			if !analysis.NeedReload {
				continue
			}

			records, err := loader.LoadFile(path)
			if postErr := sink.Post(ctx, loop.Reload{Source: path, Records: records, Err: err}); postErr != nil {
				logging.Debug("reload not delivered", "error", postErr)
				return
			}
		}
	}()
	return nil
}
