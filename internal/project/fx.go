package project

import (
	"github.com/helioscrm/helios/internal/project/repository"
	"github.com/helioscrm/helios/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
