// The worker command is the streaming entry point: it consumes tokenized
// document batches from kafka, runs each batch as a corpus, archives the
// results, and publishes audit entries back to kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/AcroLex/internal/application/expansion"
	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/engine/pipeline"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/AcroLex/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return errors.New(errors.CodeConfigError, "worker requires kafka.enabled")
	}

	logger, err := logging.NewLogger(logging.LogConfig(cfg.Log))
	if err != nil {
		return err
	}
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store expansion.RunStore
	if cfg.Database.Enabled {
		if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
			return err
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = repositories.NewRunRepository(pool, logger.Named("store"))
	}

	producer, err := kafka.NewAuditProducer(cfg.Kafka, logger.Named("producer"))
	if err != nil {
		return err
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka, logger.Named("consumer"))
	if err != nil {
		return err
	}
	defer consumer.Close()

	p := pipeline.New(cfg.Engine, logger.Named("pipeline"), nil)
	svc := expansion.NewService(p, store, producer, logger)

	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			p.SetAcceptThreshold(next.Engine.Aligner.AcceptThreshold)
			logger.Info("configuration reloaded",
				logging.String("log_level", next.Log.Level),
				logging.Float64("accept_threshold", next.Engine.Aligner.AcceptThreshold))
		})
	}

	logger.Info("worker consuming",
		logging.String("topic", cfg.Kafka.DocumentsTopic),
		logging.String("group", cfg.Kafka.GroupID))

	return consumer.Run(ctx, func(ctx context.Context, docs []document.Document) error {
		_, err := svc.Run(ctx, docs)
		return err
	})
}
