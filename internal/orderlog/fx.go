package orderlog

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/orderlog/repository"
	"github.com/floorops/floorops/internal/orderlog/service"
)

var Module = fx.Module("orderlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
