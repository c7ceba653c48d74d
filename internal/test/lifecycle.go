package test

import (
	"sync"

	"go.uber.org/fx"
)

// LifecycleRecorder collects hooks so tests can run OnStart/OnStop by hand.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub closes Called the first time Shutdown is invoked.
type ShutdownerStub struct {
	once   sync.Once
	Called chan struct{}
}

func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	s.once.Do(func() {
		if s.Called != nil {
			close(s.Called)
		}
	})
	return nil
}
