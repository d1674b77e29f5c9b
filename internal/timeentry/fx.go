package timeentry

import (
	"github.com/helioscrm/helios/internal/timeentry/repository"
	"github.com/helioscrm/helios/internal/timeentry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeentry.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
