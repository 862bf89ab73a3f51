package contract

import (
	"github.com/railzwaylabs/contractflow/internal/contract/repository"
	"github.com/railzwaylabs/contractflow/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
