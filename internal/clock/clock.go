package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies "now" to the board and reservation logic so tests can
// drive time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}

// Module provides the wall clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
