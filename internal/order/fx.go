package order

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/order/repository"
	"github.com/floorops/floorops/internal/order/service"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
