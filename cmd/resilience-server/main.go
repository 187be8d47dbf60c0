package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/api"
	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/loader"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/metrics"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
	"github.com/dd0wney/cluso-resilience/pkg/server"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	dataDir := flag.String("data", "", "OpenFlights data directory (overrides config)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	fetchS3 := flag.Bool("fetch-precomputed", false, "Download the precomputed regions from S3 before serving")
	flag.Parse()

	if err := run(*configPath, *dataDir, *port, *fetchS3); err != nil {
		fmt.Fprintf(os.Stderr, "resilience-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string, port int, fetchS3 bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logging.SetDefaultLogger(logger)
	logger.Info("resilience server starting",
		logging.String("version", version),
		logging.Path(cfg.Data.Dir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, stats, err := loader.LoadDir(cfg.Data.Dir, cfg.Data.AirportsFile, cfg.Data.RoutesFile, logger)
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	if stats.AirportsSkipped > 0 || stats.RoutesSkipped > 0 {
		logger.Warn("malformed openflights rows skipped",
			logging.Int("airports", stats.AirportsSkipped),
			logging.Int("routes", stats.RoutesSkipped),
		)
	}

	svc := analysis.NewService(
		analysis.WithLogger(logger),
		analysis.WithMetrics(metrics.DefaultRegistry()),
		analysis.WithWorkers(cfg.Attack.Workers),
	)

	store := precomputed.NewStore(cfg.Precomputed.Path)
	srv := api.NewServer(g, svc,
		api.WithPrecomputed(store),
		api.WithConfig(cfg),
		api.WithVersion(version),
	)
	if err := srv.ReloadPrecomputed(); err != nil {
		logger.Warn("precomputed regions unavailable", logging.Error(err))
	}
	if fetchS3 && cfg.Precomputed.S3Bucket != "" {
		if err := fetchPrecomputed(ctx, cfg.Precomputed, store); err != nil {
			logger.Warn("precomputed download failed, using local cache", logging.Error(err))
		} else if err := srv.ReloadPrecomputed(); err != nil {
			logger.Warn("precomputed regions unavailable", logging.Error(err))
		}
	}

	gs := server.NewGracefulServer(cfg.Server, srv.Handler(), logger)
	gs.SetReloadFunc(srv.ReloadPrecomputed)
	return gs.Run(ctx)
}

// fetchPrecomputed merges the S3 mirror into store and writes it to disk
func fetchPrecomputed(ctx context.Context, cfg config.PrecomputedConfig, store *precomputed.Store) error {
	uploader, err := precomputed.NewUploaderFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if err := uploader.Download(ctx, store); err != nil {
		return err
	}
	return store.Save()
}
