package lead

import (
	"github.com/helioscrm/helios/internal/lead/repository"
	"github.com/helioscrm/helios/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
