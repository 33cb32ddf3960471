package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	infraconfig "github.com/jonesrussell/north-cloud/films/infrastructure/config"
	infraes "github.com/jonesrussell/north-cloud/films/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/films/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/films/internal/config"
	"github.com/jonesrussell/north-cloud/films/internal/elasticsearch"
)

// Viper keys bound to persistent flags.
const (
	keyConfig    = "config"
	keyESURL     = "elasticsearch.url"
	keyIndex     = "elasticsearch.index"
	keyBatchSize = "ingest.batch_size"
	keyDebug     = "debug"
)

// app carries the loaded configuration to subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log infralogger.Logger
}

// Execute runs the root command
func Execute() error {
	_ = godotenv.Load()
	return newRootCommand().ExecuteContext(context.Background())
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "filmctl",
		Short:         "Manage the films Elasticsearch index",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $CONFIG_PATH or ./config.yml)")
	flags.String("es-url", "", "Elasticsearch URL")
	flags.String("index", "", "films index name")
	flags.Int("batch-size", 0, "documents per bulk request")
	flags.Bool("debug", false, "enable debug logging")

	for key, name := range map[string]string{
		keyConfig:    "config",
		keyESURL:     "es-url",
		keyIndex:     "index",
		keyBatchSize: "batch-size",
		keyDebug:     "debug",
	} {
		// Lookup never returns nil for flags registered above.
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	a.v.SetEnvPrefix("FILMCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(newIndexCommand(a), newPopulateCommand(a))
	return rootCmd
}

// init loads the YAML/env configuration and applies flag overrides.
func (a *app) init() error {
	path := a.v.GetString(keyConfig)
	if path == "" {
		path = infraconfig.GetConfigPath("config.yml")
	}

	cfg, err := infraconfig.LoadWithDefaults[config.Config](path, config.SetDefaults)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(a.v, cfg)
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      "console",
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.log = log.With(infralogger.String("service", "filmctl"))
	return nil
}

// applyOverrides copies explicitly set flags and FILMCTL_* variables onto cfg.
func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet(keyESURL) && v.GetString(keyESURL) != "" {
		cfg.Elasticsearch.URL = v.GetString(keyESURL)
	}
	if v.IsSet(keyIndex) && v.GetString(keyIndex) != "" {
		cfg.Elasticsearch.Index = v.GetString(keyIndex)
	}
	if v.IsSet(keyBatchSize) && v.GetInt(keyBatchSize) > 0 {
		cfg.Ingest.BatchSize = v.GetInt(keyBatchSize)
	}
	if v.GetBool(keyDebug) {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
}

// connect builds a verified client for the configured cluster.
func (a *app) connect(ctx context.Context) (*elasticsearch.Client, error) {
	esClient, err := infraes.NewClient(ctx, a.cfg.Elasticsearch.ClientConfig(), a.log)
	if err != nil {
		return nil, err
	}
	return elasticsearch.NewClient(esClient, 0), nil
}
