package reservation

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/reservation/repository"
	"github.com/floorops/floorops/internal/reservation/service"
)

var Module = fx.Module("reservation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
