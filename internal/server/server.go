package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/contractflow/internal/config"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	scheduledomain "github.com/railzwaylabs/contractflow/internal/schedule/domain"
	"github.com/railzwaylabs/contractflow/internal/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	log    *zap.Logger
	db     *gorm.DB

	contractSvc contractdomain.Service
	scheduleSvc scheduledomain.Repository
	sched       *scheduler.Scheduler
}

type Param struct {
	fx.In

	Log         *zap.Logger
	DB          *gorm.DB
	Cfg         config.Config
	ContractSvc contractdomain.Service
	ScheduleSvc scheduledomain.Repository
	Sched       *scheduler.Scheduler
}

func NewServer(p Param) *Server {
	if p.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:      gin.New(),
		log:         p.Log.Named("server"),
		db:          p.DB,
		contractSvc: p.ContractSvc,
		scheduleSvc: p.ScheduleSvc,
		sched:       p.Sched,
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.GetHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/contracts", s.CreateContract)
		v1.GET("/contracts/:id", s.GetContract)
		v1.PUT("/contracts/:id", s.UpdateContract)
		v1.DELETE("/contracts/:id", s.DeleteContract)

		v1.POST("/contracts/:id/approve", s.ApproveContract)
		v1.POST("/contracts/:id/decline", s.DeclineContract)
		v1.POST("/contracts/:id/pause", s.PauseContract)
		v1.POST("/contracts/:id/resume", s.ResumeContract)
		v1.POST("/contracts/:id/skip", s.SkipContract)

		v1.POST("/stores/:store_id/schedule", s.TriggerSchedule)
		v1.GET("/stores/:store_id/schedule-log", s.ListScheduleLog)
	}
}

func (s *Server) GetHealth(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(startHTTP),
)

func startHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
