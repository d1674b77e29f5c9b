package ticket

import (
	"github.com/helioscrm/helios/internal/ticket/repository"
	"github.com/helioscrm/helios/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
