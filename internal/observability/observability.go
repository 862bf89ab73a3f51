package observability

import (
	"github.com/railzwaylabs/contractflow/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
)
