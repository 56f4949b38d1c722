package table

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/table/repository"
	"github.com/floorops/floorops/internal/table/service"
)

var Module = fx.Module("table.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
