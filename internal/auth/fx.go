package auth

import (
	"github.com/railzwaylabs/waterworks/internal/auth/repository"
	"github.com/railzwaylabs/waterworks/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
