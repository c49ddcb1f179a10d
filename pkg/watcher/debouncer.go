package watcher

import (
	"context"
	"time"

	"github.com/ritzau/graphview/pkg/logging"
)

// Debouncer batches rapid file system events so a burst of saves causes a
// single reload
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run processes events and applies debouncing logic. Both timers are only
// touched from this goroutine.
func (d *Debouncer) run(ctx context.Context) {
	var (
		quiet       <-chan time.Time
		deadline    <-chan time.Time
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// A removal that was followed by a write is an atomic save; the
		// write wins and only one event goes out.
		switch {
		case len(accumulated[ChangeTypeWrite]) > 0:
			d.emit(ctx, ChangeEvent{Type: ChangeTypeWrite, Paths: accumulated[ChangeTypeWrite], Timestamp: time.Now()})
		case len(accumulated[ChangeTypeRemove]) > 0:
			d.emit(ctx, ChangeEvent{Type: ChangeTypeRemove, Paths: accumulated[ChangeTypeRemove], Timestamp: time.Now()})
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	defer close(d.output)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			// Reset quiet period timer, start max wait timer on first event
			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

func (d *Debouncer) emit(ctx context.Context, ev ChangeEvent) {
	select {
	case d.output <- ev:
	case <-ctx.Done():
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
