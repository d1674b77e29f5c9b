package solar

import (
	"github.com/helioscrm/helios/internal/solar/domain"
	"github.com/helioscrm/helios/internal/solar/pvgis"
	"github.com/helioscrm/helios/internal/solar/service"
	"go.uber.org/fx"
)

var Module = fx.Module("solar.service",
	fx.Provide(
		fx.Annotate(pvgis.NewClient, fx.As(new(domain.IrradianceClient))),
	),
	fx.Provide(service.New),
)
