package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/printflow/printflow/internal/config"
)

// Module exposes notification sink implementation to fx graph.
var Module = fx.Provide(newSink)

type sinkParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSink(p sinkParams) (Sink, error) {
	if p.Config.NotifyAddress == "" {
		return NewLogSink(p.Logger), nil
	}
	return NewHTTPSink(p.Config.NotifyAddress, p.Logger)
}
