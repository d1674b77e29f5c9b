package customer

import (
	"github.com/helioscrm/helios/internal/customer/repository"
	"github.com/helioscrm/helios/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
