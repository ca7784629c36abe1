package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Opnex/Ai-Developer-Library/library/config"
	"github.com/Opnex/Ai-Developer-Library/library/internal/handler"
	"github.com/Opnex/Ai-Developer-Library/library/internal/repository"
	"github.com/Opnex/Ai-Developer-Library/library/internal/seed"
	"github.com/Opnex/Ai-Developer-Library/library/internal/server"
	"github.com/Opnex/Ai-Developer-Library/library/internal/service"
	"github.com/Opnex/Ai-Developer-Library/library/internal/storage"
	"github.com/Opnex/Ai-Developer-Library/library/migrations"
	"github.com/Opnex/Ai-Developer-Library/pkg/db"
	"github.com/Opnex/Ai-Developer-Library/pkg/kafka"
	"github.com/Opnex/Ai-Developer-Library/pkg/logger"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	ctx := context.Background()

	database, err := db.NewDB(ctx, cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	store, err := storage.NewSQLStore(database, log)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	repo, err := repository.NewRepository(store, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	var events service.Publisher
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		defer producer.Close() //nolint:errcheck
		events = service.NewEnqueuer(producer)
	}

	svc, err := service.NewService(ctx, repo, events, log)
	if err != nil {
		log.Fatal("service", zap.Error(err))
	}

	seeder := seed.New(cfg.Seed, log)
	if data, err := seeder.Fetch(ctx); err != nil {
		log.Warn("seed load failed, using stored collections", zap.Error(err))
	} else if err := svc.ApplySeed(ctx, data); err != nil {
		log.Fatal("apply seed", zap.Error(err))
	}

	h := handler.New(svc, seeder, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run()
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err = g.Wait(); err != nil {
		log.Debug("server stopped", zap.Error(err))
	}
	database.Close()
	log.Info("Graceful shutdown finished")
}
