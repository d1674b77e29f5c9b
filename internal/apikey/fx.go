package apikey

import (
	"github.com/helioscrm/helios/internal/apikey/repository"
	"github.com/helioscrm/helios/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
