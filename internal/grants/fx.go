package grants

import (
	"github.com/helioscrm/helios/internal/grants/repository"
	"github.com/helioscrm/helios/internal/grants/service"
	"go.uber.org/fx"
)

var Module = fx.Module("grants.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
