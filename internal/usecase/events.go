package usecase

import "github.com/printflow/printflow/internal/adapter/notify"

// EventPublisher hands committed-transition events to the async dispatcher.
type EventPublisher interface {
	Enqueue(event notify.Event)
}
