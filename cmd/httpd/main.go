package main

import (
	"context"
	"fmt"
	"os"

	infraconfig "github.com/jonesrussell/north-cloud/films/infrastructure/config"
	infraes "github.com/jonesrussell/north-cloud/films/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/films/internal/api"
	"github.com/jonesrussell/north-cloud/films/internal/config"
	"github.com/jonesrussell/north-cloud/films/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/films/internal/metrics"
	"github.com/jonesrussell/north-cloud/films/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := infraconfig.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	profiling.StartPprofServer(log)
	if pyroProfiler, pyroErr := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log); pyroErr != nil {
		log.Warn("Pyroscope failed to start", infralogger.Error(pyroErr))
	} else if pyroProfiler != nil {
		defer pyroProfiler.Stop() //nolint:errcheck // best-effort cleanup
	}

	log.Info("Starting films service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.Bool("debug", cfg.Service.Debug),
		infralogger.String("index", cfg.Elasticsearch.Index),
	)

	ctx := context.Background()

	esClient, err := infraes.NewClient(ctx, cfg.Elasticsearch.ClientConfig(), log)
	if err != nil {
		log.Error("Failed to create Elasticsearch client", infralogger.Error(err))
		return 1
	}

	provider := metrics.NewProvider()
	client := elasticsearch.NewClient(esClient, cfg.Service.SearchTimeout)
	builder := elasticsearch.NewQueryBuilder(cfg.Analytics.GenreBuckets, cfg.Analytics.DirectorBuckets)
	films := service.NewFilmService(client, builder, cfg.Elasticsearch.Index, provider, log)

	handler := api.NewHandler(films, cfg.PageLimits(), log)
	server := api.NewServer(handler, films, provider, cfg, log)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return 1
	}

	log.Info("Films service exited cleanly")
	return 0
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}
