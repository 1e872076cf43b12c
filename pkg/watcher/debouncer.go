package watcher

import (
	"context"
	"time"

	"github.com/ritzau/influence-graph/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive re-parsing
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

// run owns all batching state; both timers are plain channels read in the
// same select, so a flush never races with an incoming event.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet    <-chan time.Time
		deadline <-chan time.Time
		pending  []string
		seen     = make(map[string]bool)
		count    int
	)

	flush := func() {
		if count == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", count)
		select {
		case d.output <- ChangeEvent{Paths: pending, Count: count, Timestamp: time.Now()}:
		case <-ctx.Done():
		}
		pending, seen, count = nil, make(map[string]bool), 0
		quiet, deadline = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			for _, p := range event.Paths {
				if !seen[p] {
					seen[p] = true
					pending = append(pending, p)
				}
			}
			count += max(event.Count, 1)

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

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
