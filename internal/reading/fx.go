package reading

import (
	"github.com/railzwaylabs/waterworks/internal/reading/repository"
	"github.com/railzwaylabs/waterworks/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
