//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"prizewheel/internal/biz"
	"prizewheel/internal/conf"
	"prizewheel/internal/data"
	"prizewheel/internal/notify"
	"prizewheel/internal/server"
	"prizewheel/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Wheel, *conf.Notify, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, data.ProviderSet, biz.ProviderSet, notify.ProviderSet, service.ProviderSet, newApp))
}
