package db

import (
	"github.com/railzwaylabs/contractflow/internal/config"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewGorm(cfg config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
}

var Module = fx.Module("db",
	fx.Provide(NewGorm),
)
