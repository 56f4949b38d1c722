package kitchen

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/kitchen/repository"
	"github.com/floorops/floorops/internal/kitchen/service"
)

var Module = fx.Module("kitchen.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
