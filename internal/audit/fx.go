package audit

import (
	"github.com/railzwaylabs/waterworks/internal/audit/repository"
	"github.com/railzwaylabs/waterworks/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(service.NewExportService),
)
