package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"github.com/railzwaylabs/contractflow/internal/authorization"
	"github.com/railzwaylabs/contractflow/internal/clock"
	"github.com/railzwaylabs/contractflow/internal/commerce"
	"github.com/railzwaylabs/contractflow/internal/config"
	"github.com/railzwaylabs/contractflow/internal/contract"
	"github.com/railzwaylabs/contractflow/internal/db"
	"github.com/railzwaylabs/contractflow/internal/interval"
	"github.com/railzwaylabs/contractflow/internal/migration"
	"github.com/railzwaylabs/contractflow/internal/observability"
	"github.com/railzwaylabs/contractflow/internal/redis"
	"github.com/railzwaylabs/contractflow/internal/scheduler"
	"github.com/railzwaylabs/contractflow/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "contractflow",
		Short:   "Recurring contract billing service",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newSchedulerCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the contract API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSchedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the background order scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			runScheduler()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start API server and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runMonolith()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		interval.Module,
		authorization.Module,
		contract.Module,
		commerce.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func runScheduler() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		interval.Module,
		contract.Module,
		authorization.Module,
		commerce.Module,
		scheduler.Module,
		fx.Invoke(startScheduler),
	)
	app.Run()
}

func runMonolith() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		interval.Module,
		authorization.Module,
		contract.Module,
		commerce.Module,
		scheduler.Module,
		server.Module,
		fx.Invoke(startScheduler),
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			s.Wait()
			return nil
		},
	})
}
