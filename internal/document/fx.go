package document

import (
	"github.com/helioscrm/helios/internal/document/repository"
	"github.com/helioscrm/helios/internal/document/service"
	"github.com/helioscrm/helios/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(pdf.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
