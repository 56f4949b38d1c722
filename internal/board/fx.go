package board

import (
	"go.uber.org/fx"

	"github.com/floorops/floorops/internal/board/service"
)

var Module = fx.Module("board.service",
	fx.Provide(service.New),
)
