package authorization

import (
	"github.com/railzwaylabs/waterworks/internal/authorization/repository"
	"github.com/railzwaylabs/waterworks/internal/authorization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("authorization.service",
	fx.Provide(service.NewEnforcer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
