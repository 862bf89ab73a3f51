package interval

import "go.uber.org/fx"

var Module = fx.Module("interval",
	fx.Provide(NewCalculator),
)
