package sector

import (
	"github.com/railzwaylabs/waterworks/internal/sector/repository"
	"github.com/railzwaylabs/waterworks/internal/sector/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sector.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
