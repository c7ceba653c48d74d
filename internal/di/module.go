package di

import (
	"go.uber.org/fx"

	"github.com/printflow/printflow/internal/adapter/gateway"
	"github.com/printflow/printflow/internal/adapter/notify"
	"github.com/printflow/printflow/internal/app"
	"github.com/printflow/printflow/internal/config"
	"github.com/printflow/printflow/internal/logger"
	"github.com/printflow/printflow/internal/pkg/auth"
	"github.com/printflow/printflow/internal/server/http/router"
	"github.com/printflow/printflow/internal/storage/postgres"
	"github.com/printflow/printflow/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
