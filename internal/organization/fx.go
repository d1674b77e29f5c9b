package organization

import (
	"github.com/helioscrm/helios/internal/organization/repository"
	"github.com/helioscrm/helios/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
