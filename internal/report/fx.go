package report

import (
	"github.com/railzwaylabs/waterworks/internal/report/repository"
	"github.com/railzwaylabs/waterworks/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
