package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/printflow/printflow/internal/adapter/notify"
)

// EventDispatcher delivers notification events to the sink asynchronously.
// Producers enqueue after their transaction commits; a slow or failing sink
// therefore cannot roll back or delay a state transition.
type EventDispatcher struct {
	sink    notify.Sink
	workers int
	logger  *slog.Logger

	events chan notify.Event
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewEventDispatcher constructs dispatcher with a bounded queue.
func NewEventDispatcher(sink notify.Sink, bufferSize, workers int, logger *slog.Logger) *EventDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &EventDispatcher{
		sink:    sink,
		workers: workers,
		logger:  logger,
		events:  make(chan notify.Event, bufferSize),
	}
}

// Start launches background delivery.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop waits for all workers to finish.
func (d *EventDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Enqueue hands an event to the dispatcher without blocking the caller.
// When the queue is full the event is dropped and logged.
func (d *EventDispatcher) Enqueue(event notify.Event) {
	select {
	case d.events <- event:
	default:
		d.logger.Warn("event queue full, dropping event", slog.String("type", event.Type))
	}
}

func (d *EventDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			if err := d.sink.Publish(ctx, event); err != nil {
				d.logger.Error("event delivery failed",
					slog.String("type", event.Type),
					slog.String("error", err.Error()))
			}
		}
	}
}
