package subsidy

import (
	"github.com/helioscrm/helios/internal/subsidy/repository"
	"github.com/helioscrm/helios/internal/subsidy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subsidy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
