package gateway

import (
	"go.uber.org/fx"

	"github.com/printflow/printflow/internal/config"
)

// Module exposes gateway client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
}

func newClient(p clientParams) (Client, error) {
	return NewSandboxClient(p.Config.GatewayAddress)
}
