package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/adapter/gateway"
	"github.com/printflow/printflow/internal/adapter/notify"
)

// GatewayStub issues predictable payment sessions.
type GatewayStub struct {
	mu        sync.Mutex
	Err       error
	CreateFn  func(context.Context, decimal.Decimal, string) (*gateway.Session, error)
	Sessions  []gateway.Session
	nextToken int
}

// CreateSession returns a deterministic session per invocation.
func (g *GatewayStub) CreateSession(ctx context.Context, amount decimal.Decimal, description string) (*gateway.Session, error) {
	if g.CreateFn != nil {
		return g.CreateFn(ctx, amount, description)
	}
	if g.Err != nil {
		return nil, g.Err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextToken++
	session := gateway.Session{
		Authority:   fmt.Sprintf("A%032d", g.nextToken),
		RedirectURL: "https://gateway.test/pay/" + fmt.Sprintf("A%032d", g.nextToken),
	}
	g.Sessions = append(g.Sessions, session)
	return &session, nil
}

// EventRecorder collects published events synchronously.
type EventRecorder struct {
	mu     sync.Mutex
	Events []notify.Event
}

// Enqueue stores the event.
func (r *EventRecorder) Enqueue(event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
}

// Types returns recorded event types in order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		types = append(types, e.Type)
	}
	return types
}

// SinkStub records events delivered through the notify.Sink contract.
type SinkStub struct {
	mu        sync.Mutex
	Err       error
	Published []notify.Event
	Delivered chan notify.Event
}

// Publish stores the event and signals Delivered when configured.
func (s *SinkStub) Publish(ctx context.Context, event notify.Event) error {
	s.mu.Lock()
	s.Published = append(s.Published, event)
	s.mu.Unlock()
	if s.Delivered != nil {
		select {
		case s.Delivered <- event:
		default:
		}
	}
	return s.Err
}

// Count returns the number of delivered events.
func (s *SinkStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Published)
}

var _ gateway.Client = (*GatewayStub)(nil)
var _ notify.Sink = (*SinkStub)(nil)
