package catalog

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/catalog/repository"
	"github.com/floorops/floorops/internal/catalog/service"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
