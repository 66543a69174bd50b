package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/internal/config"
	"github.com/meikuraledutech/chatflow/internal/logger"
	"github.com/meikuraledutech/chatflow/internal/metrics"
	"github.com/meikuraledutech/chatflow/memory"
	"github.com/meikuraledutech/chatflow/postgres"
	"github.com/meikuraledutech/chatflow/redis"
	"github.com/meikuraledutech/chatflow/server"
	"github.com/meikuraledutech/chatflow/service"
	"github.com/meikuraledutech/chatflow/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flow editor HTTP API",
	Long:  `Starts the HTTP API over the store selected by CHATFLOW_STORE (memory, postgres, sqlite or redis).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		log, err := logger.New(cfg.Env)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync(log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, locker, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		if err := store.CreateSchema(ctx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}

		svcOpts := []service.Option{service.WithLogger(log)}
		var srvOpts []server.Option
		srvOpts = append(srvOpts, server.WithLogger(log))
		if cfg.Metrics {
			rec := metrics.New()
			svcOpts = append(svcOpts, service.WithMetrics(rec))
			srvOpts = append(srvOpts, server.WithMetrics(rec.Handler()))
		}
		if locker != nil {
			svcOpts = append(svcOpts, service.WithLocker(locker, cfg.LockTTL))
		}

		app := server.New(service.New(store, svcOpts...), srvOpts...)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info("starting chatflow server",
				zap.String("addr", cfg.Addr),
				zap.String("store", cfg.Store),
			)
			return app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
		})
		g.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down")
			return app.ShutdownWithTimeout(shutdownTimeout)
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("chatflow server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, overrides CHATFLOW_ADDR")
}

// openStore connects the configured backend. The redis backend also
// provides the distributed flow lock.
func openStore(ctx context.Context, cfg *config.Config) (chatflow.Store, chatflow.Locker, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.New(pool), nil, pool.Close, nil

	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, func() { s.Close() }, nil

	case config.StoreRedis:
		s := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := s.Client().Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return s, s.Locker(), func() { s.Close() }, nil
	}
	return memory.New(), nil, func() {}, nil
}
