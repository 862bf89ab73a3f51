package scheduler

import (
	schedulerepo "github.com/railzwaylabs/contractflow/internal/schedule/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(schedulerepo.Provide),
	fx.Provide(New),
)
