package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/printflow/printflow/internal/adapter/notify"
	testhelpers "github.com/printflow/printflow/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestDispatcherDeliversEvents(t *testing.T) {
	sink := &testhelpers.SinkStub{Delivered: make(chan notify.Event, 4)}
	d := NewEventDispatcher(sink, 4, 2, discardLogger())

	d.Start(context.Background())
	defer d.Stop()

	d.Enqueue(notify.Event{Type: "order.created"})
	d.Enqueue(notify.Event{Type: "payment.callback"})

	for i := 0; i < 2; i++ {
		select {
		case <-sink.Delivered:
		case <-time.After(time.Second):
			t.Fatal("expected event delivery")
		}
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sink := &testhelpers.SinkStub{}
	d := NewEventDispatcher(sink, 1, 1, discardLogger())

	// Not started: the queue holds one event, the second is dropped without
	// blocking the producer.
	done := make(chan struct{})
	go func() {
		d.Enqueue(notify.Event{Type: "first"})
		d.Enqueue(notify.Event{Type: "second"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue must never block")
	}
}

func TestDispatcherLogsSinkFailures(t *testing.T) {
	sink := &testhelpers.SinkStub{Err: errors.New("boom"), Delivered: make(chan notify.Event, 1)}
	d := NewEventDispatcher(sink, 2, 1, discardLogger())

	d.Start(context.Background())
	defer d.Stop()

	d.Enqueue(notify.Event{Type: "payment.approved"})

	select {
	case <-sink.Delivered:
	case <-time.After(time.Second):
		t.Fatal("failing sink must still be invoked")
	}
}

func TestDispatcherStopWaitsForWorkers(t *testing.T) {
	sink := &testhelpers.SinkStub{}
	d := NewEventDispatcher(sink, 2, 3, discardLogger())

	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop must terminate workers")
	}
}

func TestDispatcherDefaults(t *testing.T) {
	d := NewEventDispatcher(&testhelpers.SinkStub{}, 0, 0, discardLogger())
	if d.workers != 1 {
		t.Fatalf("worker count defaulted to %d", d.workers)
	}
	if cap(d.events) != 1 {
		t.Fatalf("buffer defaulted to %d", cap(d.events))
	}
}
