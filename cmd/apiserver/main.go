// The apiserver command serves the HTTP API: corpus expansion, registry
// lookups backed by the optional redis cache, alignment scoring, health
// probes, and prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/turtacn/AcroLex/internal/application/expansion"
	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/engine/aligner"
	"github.com/turtacn/AcroLex/internal/engine/pipeline"
	"github.com/turtacn/AcroLex/internal/infrastructure/cache"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/AcroLex/internal/interfaces/http"
	"github.com/turtacn/AcroLex/internal/interfaces/http/handlers"
	"github.com/turtacn/AcroLex/internal/interfaces/http/middleware"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(logging.LogConfig(cfg.Log))
	if err != nil {
		return err
	}
	logger = logger.Named("apiserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics registry: engine metrics plus the standard process and Go
	// collectors.
	var (
		gatherer stdprometheus.Gatherer
		engineM  *prometheus.EngineMetrics
	)
	if cfg.Metrics.Enabled {
		reg := stdprometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		engineM = prometheus.NewEngineMetrics(reg, cfg.Metrics.Namespace)
		gatherer = reg
	}

	var checkers []handlers.HealthChecker

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
		checkers = append(checkers, poolChecker{pool})
	}

	var lookupCache *cache.LookupCache
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		lookupCache = cache.NewLookupCache(client, cfg.Redis.TTL, logger.Named("cache"))
		checkers = append(checkers, redisChecker{client})
	}

	p := pipeline.New(cfg.Engine, logger.Named("pipeline"), engineM)
	svc := expansion.NewService(p, store, nil, logger)
	al := aligner.New(cfg.Engine.Aligner)

	// Hot reload of the safe settings: log level and accept threshold.
	// Everything else requires a restart.
	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			p.SetAcceptThreshold(next.Engine.Aligner.AcceptThreshold)
			al.SetAcceptThreshold(next.Engine.Aligner.AcceptThreshold)
			logger.Info("configuration reloaded",
				logging.String("log_level", next.Log.Level),
				logging.Float64("accept_threshold", next.Engine.Aligner.AcceptThreshold))
		})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(version, checkers...),
		EngineHandler:   handlers.NewEngineHandler(svc, al, lookupCache, logger),
		Logger:          logger.Named("http"),
		Logging:         middleware.DefaultLoggingConfig(),
		MetricsGatherer: gatherer,
	})

	return httpserver.NewServer(cfg.Server, router, logger).Run(ctx)
}
